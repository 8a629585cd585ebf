package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Gantry/internal/domain"
)

// workflowDoc — YAML-представление workflow-файла.
type workflowDoc struct {
	Name     string      `yaml:"name"`
	On       triggersDoc `yaml:"on"`
	Matrix   matrixDoc   `yaml:"matrix"`
	Steps    []stepDoc   `yaml:"steps"`
	Policy   policyDoc   `yaml:"policy"`
}

type triggersDoc struct {
	PullRequest *struct {
		Branches []string `yaml:"branches"`
	} `yaml:"pull_request"`
	Schedule *struct {
		Cron     string `yaml:"cron"`
		Timezone string `yaml:"timezone"`
	} `yaml:"schedule"`
	Dispatch bool `yaml:"dispatch"`
}

type stepDoc struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Packages   []string `yaml:"packages"`
	Command    []string `yaml:"command"`
	TimeoutSec int      `yaml:"timeout_sec"`
}

type policyDoc struct {
	MaxParallel int  `yaml:"max_parallel"`
	FailFast    bool `yaml:"fail_fast"`
}

// matrixDoc — матрица с сохранением порядка объявления осей.
//
// Стандартное декодирование YAML-маппинга в map теряет порядок ключей,
// а порядок осей задаёт порядок разворачивания. Поэтому разбираем
// yaml.Node вручную: Content маппинга хранит пары ключ/значение в
// порядке документа.
type matrixDoc struct {
	Dimensions []domain.Dimension
}

// UnmarshalYAML реализует yaml.Unmarshaler.
func (m *matrixDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("matrix must be a mapping, got %s", nodeKind(node))
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		if valNode.Kind != yaml.SequenceNode {
			return fmt.Errorf("matrix axis %q must be a sequence, got %s",
				keyNode.Value, nodeKind(valNode))
		}

		values := make([]string, 0, len(valNode.Content))
		for _, item := range valNode.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("matrix axis %q has non-scalar value", keyNode.Value)
			}
			// Берём сырое скалярное значение: версии вида 3.7 без кавычек
			// YAML считает числами, а для оси это строки.
			values = append(values, item.Value)
		}

		m.Dimensions = append(m.Dimensions, domain.Dimension{
			Name:   keyNode.Value,
			Values: values,
		})
	}

	return nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "unknown"
	}
}

// Parse разбирает workflow-декларацию из YAML.
//
// Только разбор и перенос в доменные типы; семантическая валидация —
// отдельно через Validate.
func Parse(data []byte) (*domain.Workflow, error) {
	var doc workflowDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewConfigError("", err.Error(), ErrInvalidDeclaration)
	}

	wf := &domain.Workflow{
		Name:   doc.Name,
		Matrix: domain.Matrix{Dimensions: doc.Matrix.Dimensions},
		Policy: domain.Policy{
			MaxParallel: doc.Policy.MaxParallel,
			FailFast:    doc.Policy.FailFast,
		},
	}

	if doc.On.PullRequest != nil {
		wf.Triggers.PullRequest = &domain.PullRequestTrigger{
			Branches: doc.On.PullRequest.Branches,
		}
	}
	if doc.On.Schedule != nil {
		wf.Triggers.Schedule = &domain.ScheduleTrigger{
			Cron:     doc.On.Schedule.Cron,
			Timezone: doc.On.Schedule.Timezone,
		}
	}
	wf.Triggers.Dispatch = doc.On.Dispatch

	wf.Steps = make([]domain.StepDef, len(doc.Steps))
	for i, s := range doc.Steps {
		wf.Steps[i] = domain.StepDef{
			Name:       s.Name,
			Kind:       domain.StepKind(s.Kind),
			Packages:   s.Packages,
			Command:    s.Command,
			TimeoutSec: s.TimeoutSec,
		}
	}

	return wf, nil
}

// Load читает, разбирает и валидирует workflow-файл.
// Пустое имя workflow заполняется именем файла без расширения.
func Load(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow file: %w", err)
	}

	wf, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if wf.Name == "" {
		base := filepath.Base(path)
		wf.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := Validate(wf); err != nil {
		return nil, err
	}

	return wf, nil
}

// LoadDir загружает все workflow-файлы (*.yaml, *.yml) из каталога.
// Возвращает map имя → workflow. Дубликат имени — ошибка.
func LoadDir(dir string) (map[string]*domain.Workflow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read workflows dir: %w", err)
	}

	workflows := make(map[string]*domain.Workflow)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		wf, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}

		if _, exists := workflows[wf.Name]; exists {
			return nil, fmt.Errorf("duplicate workflow name %q in %s", wf.Name, entry.Name())
		}
		workflows[wf.Name] = wf
	}

	return workflows, nil
}
