package engine

import (
	"github.com/shaiso/Gantry/internal/domain"
)

// Expand разворачивает матрицу в полный упорядоченный список JobSpec.
//
// Порядок — лексикографический: по осям в порядке объявления, внутри
// оси — по значениям в порядке объявления. Функция чистая и тотальная
// на валидном входе: одинаковая декларация всегда даёт одинаковый
// список, поэтому ключи jobs стабильны между повторными запусками.
//
// Каждая комбинация встречается ровно один раз: ни дублей, ни пропусков,
// всего — произведение размеров всех осей.
//
// Невалидная матрица — *ConfigError до создания единственного JobSpec.
func Expand(m *domain.Matrix, steps []domain.StepDef) ([]domain.JobSpec, error) {
	if err := ValidateMatrix(m); err != nil {
		return nil, err
	}

	dims := m.Dimensions
	specs := make([]domain.JobSpec, 0, m.Size())

	// Одометр: indices[i] — позиция текущего значения оси i.
	// Младший разряд — последняя ось, так что порядок получается
	// лексикографическим по порядку объявления осей.
	indices := make([]int, len(dims))

	for {
		axes := make([]domain.AxisValue, len(dims))
		for i, dim := range dims {
			axes[i] = domain.AxisValue{Name: dim.Name, Value: dim.Values[indices[i]]}
		}

		specs = append(specs, domain.JobSpec{
			Key:   domain.AxisKey(axes),
			Index: len(specs),
			Axes:  axes,
			Steps: steps,
		})

		// Инкремент одометра с переносом от последней оси к первой.
		pos := len(dims) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(dims[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return specs, nil
		}
	}
}
