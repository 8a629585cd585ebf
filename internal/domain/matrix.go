package domain

import "strings"

// Dimension — одна ось матрицы: имя и упорядоченный список значений.
//
// Порядок значений — порядок объявления в workflow-файле.
// Он определяет порядок обхода при разворачивании матрицы.
type Dimension struct {
	// Name — имя оси (например, "os", "python-version").
	Name string `json:"name"`

	// Values — значения оси в порядке объявления. Минимум одно.
	Values []string `json:"values"`
}

// Matrix — объявленная build-матрица: упорядоченный список осей.
//
// Декартово произведение значений всех осей задаёт множество jobs.
// Порядок осей — порядок объявления; он фиксирует детерминированный
// порядок разворачивания (лексикографический по осям, затем по значениям).
type Matrix struct {
	// Dimensions — оси матрицы в порядке объявления.
	Dimensions []Dimension `json:"dimensions"`
}

// Size возвращает количество jobs, которое даст разворачивание матрицы
// (произведение размеров всех осей). Для пустой матрицы возвращает 0.
func (m *Matrix) Size() int {
	if len(m.Dimensions) == 0 {
		return 0
	}
	size := 1
	for _, d := range m.Dimensions {
		size *= len(d.Values)
	}
	return size
}

// AxisNames возвращает имена осей в порядке объявления.
func (m *Matrix) AxisNames() []string {
	names := make([]string, len(m.Dimensions))
	for i, d := range m.Dimensions {
		names[i] = d.Name
	}
	return names
}

// AxisValue — выбранное значение одной оси внутри конкретного job.
type AxisValue struct {
	// Name — имя оси.
	Name string `json:"name"`

	// Value — выбранное значение.
	Value string `json:"value"`
}

// AxisKey строит каноничный ключ job из выбранных значений осей:
// "os=linux/python-version=3.7". Порядок — порядок осей в матрице,
// поэтому ключ стабилен между повторными запусками одной декларации
// и пригоден как идентичность job для логов и отчётов.
func AxisKey(axes []AxisValue) string {
	parts := make([]string, len(axes))
	for i, a := range axes {
		parts[i] = a.Name + "=" + a.Value
	}
	return strings.Join(parts, "/")
}
