package localenv

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/shaiso/Gantry/internal/executor"
)

// Installer — установщик зависимостей внешней командой.
//
// К базовой команде добавляются объявленные пакеты:
// например, ["python", "-m", "pip", "install"] + packages.
type Installer struct {
	command []string
}

// NewInstaller создаёт установщик.
// Пустая команда — pip по умолчанию.
func NewInstaller(command []string) *Installer {
	if len(command) == 0 {
		command = []string{"python", "-m", "pip", "install"}
	}
	return &Installer{command: command}
}

// Install устанавливает пакеты в рабочий каталог окружения.
func (i *Installer) Install(ctx context.Context, env *executor.EnvContext, packages []string) error {
	if env == nil {
		return fmt.Errorf("no environment acquired")
	}
	if len(packages) == 0 {
		return nil
	}

	args := append(append([]string{}, i.command[1:]...), packages...)
	cmd := exec.CommandContext(ctx, i.command[0], args...)
	cmd.Dir = env.WorkDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("install command: %w: %s", err, tail(out.Bytes()))
	}
	return nil
}

// tail возвращает хвост вывода команды для сообщения об ошибке.
func tail(b []byte) string {
	const limit = 512
	if len(b) <= limit {
		return string(b)
	}
	return "..." + string(b[len(b)-limit:])
}
