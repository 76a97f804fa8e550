package tool

// Registry asocia tipos de tool con sus ejecutores. Se arma una sola vez
// en el arranque; las lecturas posteriores son seguras para uso concurrente.
type Registry struct {
	executors map[ToolType]Executor
}

// NewRegistry crea un registro vacío
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[ToolType]Executor),
	}
}

// Register registra un ejecutor para su tipo de tool. Un registro
// posterior para el mismo tipo reemplaza al anterior.
func (r *Registry) Register(executor Executor) {
	r.executors[executor.Type()] = executor
}

// Executor retorna el ejecutor para un tipo de tool
func (r *Registry) Executor(toolType ToolType) (Executor, error) {
	executor, ok := r.executors[toolType]
	if !ok {
		return nil, ErrNoExecutorRegistered(toolType)
	}
	return executor, nil
}

// Has indica si existe un ejecutor para el tipo
func (r *Registry) Has(toolType ToolType) bool {
	_, ok := r.executors[toolType]
	return ok
}

// All retorna los tipos con ejecutor registrado
func (r *Registry) All() []ToolType {
	types := make([]ToolType, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	return types
}
