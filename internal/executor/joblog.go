package executor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// jobLog — последовательный лог одного job.
//
// Каждая строка помечена значениями осей job, так что перемешанный
// вывод нескольких jobs остаётся атрибутируемым. Лог пишется одной
// горутиной (шаги job строго последовательны), синхронизация не нужна.
type jobLog struct {
	key string
	buf bytes.Buffer
}

func newJobLog(key string) *jobLog {
	return &jobLog{key: key}
}

// Printf добавляет строку в лог job.
func (l *jobLog) Printf(format string, args ...any) {
	fmt.Fprintf(&l.buf, "%s [%s] %s\n",
		time.Now().UTC().Format(time.RFC3339),
		l.key,
		fmt.Sprintf(format, args...),
	)
}

// Bytes возвращает накопленный лог.
func (l *jobLog) Bytes() []byte {
	return l.buf.Bytes()
}

// flush сохраняет лог в файл внутри dir и возвращает путь как LogRef.
// При пустом dir лог не сохраняется, LogRef остаётся пустым.
func (l *jobLog) flush(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, sanitizeKey(l.key)+".log")
	if err := os.WriteFile(path, l.buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write job log: %w", err)
	}

	return path, nil
}

// sanitizeKey превращает ключ job в безопасное имя файла.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "=", "-", " ", "_")
	return r.Replace(key)
}
