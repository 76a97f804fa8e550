package toolsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/nido/tool"
	"github.com/robfig/cron/v3"
)

// ExecutionJanitor marca como fallidas las ejecuciones que quedaron en
// estado running más tiempo del permitido (proceso caído a mitad de una
// ejecución, por ejemplo).
type ExecutionJanitor struct {
	executions tool.ExecutionRepository
	maxAge     time.Duration
	cron       *cron.Cron
}

// NewExecutionJanitor crea el janitor de ejecuciones colgadas
func NewExecutionJanitor(executions tool.ExecutionRepository, maxAge time.Duration) *ExecutionJanitor {
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	return &ExecutionJanitor{
		executions: executions,
		maxAge:     maxAge,
		cron:       cron.New(),
	}
}

// Start programa la limpieza periódica
func (j *ExecutionJanitor) Start() error {
	_, err := j.cron.AddFunc("@every 1m", j.sweep)
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop detiene la limpieza periódica
func (j *ExecutionJanitor) Stop() {
	j.cron.Stop()
}

func (j *ExecutionJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	marked, err := j.executions.FailStaleRunning(ctx, int(j.maxAge.Seconds()))
	if err != nil {
		logx.Error("execution janitor sweep failed: %v", err)
		return
	}
	if marked > 0 {
		logx.Info("execution janitor marked %d stale executions as failed", marked)
	}
}
