package localenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/Gantry/internal/domain"
	"github.com/shaiso/Gantry/internal/executor"
)

// Environment — локальный провайдер окружений на базе каталогов.
//
// Acquire создаёт изолированный рабочий каталог под job; Release
// удаляет его. Повторный Release и Release частично захваченного
// окружения безопасны.
type Environment struct {
	baseDir string

	mu       sync.Mutex
	released map[string]bool
}

// NewEnvironment создаёт провайдер окружений.
// Пустой baseDir — временный каталог через os.MkdirTemp.
func NewEnvironment(baseDir string) (*Environment, error) {
	if baseDir == "" {
		dir, err := os.MkdirTemp("", "gantry-env-")
		if err != nil {
			return nil, fmt.Errorf("create base dir: %w", err)
		}
		baseDir = dir
	} else {
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, fmt.Errorf("create base dir: %w", err)
		}
	}

	return &Environment{
		baseDir:  baseDir,
		released: make(map[string]bool),
	}, nil
}

// Acquire материализует рабочий каталог под комбинацию значений осей.
func (e *Environment) Acquire(ctx context.Context, axes []domain.AxisValue) (*executor.EnvContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	workDir := filepath.Join(e.baseDir, id)

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create workdir: %w", err)
	}

	return &executor.EnvContext{
		ID:      id,
		WorkDir: workDir,
		Axes:    axes,
	}, nil
}

// Release удаляет рабочий каталог окружения. Идемпотентен.
func (e *Environment) Release(env *executor.EnvContext) error {
	if env == nil || env.ID == "" {
		return nil
	}

	e.mu.Lock()
	if e.released[env.ID] {
		e.mu.Unlock()
		return nil
	}
	e.released[env.ID] = true
	e.mu.Unlock()

	if env.WorkDir == "" {
		return nil
	}
	if err := os.RemoveAll(env.WorkDir); err != nil {
		return fmt.Errorf("remove workdir: %w", err)
	}
	return nil
}

// ReleaseCount возвращает количество освобождённых окружений.
func (e *Environment) ReleaseCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.released)
}
