package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type BabyID string

func NewBabyID(id string) BabyID { return BabyID(id) }
func (b BabyID) String() string  { return string(b) }
func (b BabyID) IsEmpty() bool   { return string(b) == "" }

type ToolID string

func NewToolID(id string) ToolID { return ToolID(id) }
func (t ToolID) String() string  { return string(t) }
func (t ToolID) IsEmpty() bool   { return string(t) == "" }

type ExecutionID string

func NewExecutionID(id string) ExecutionID { return ExecutionID(id) }
func (e ExecutionID) String() string       { return string(e) }
func (e ExecutionID) IsEmpty() bool        { return string(e) == "" }
