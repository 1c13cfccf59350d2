package parser

import "github.com/pkg/errors"

// validate enforces the structural rules the grammar alone cannot express.
// It runs on every successful parse, so a Schema handed to a generator is
// always structurally sound.
//
// Rules:
//   - a model must declare at least one column
//   - model names are unique within a source file
//   - column names are unique within a model
//   - a decorator name may not repeat on one column (strict policy: a
//     repeated decorator is almost always a typo, and a silent
//     last-one-wins would bake that typo into irreversible DDL)
func validate(s *Schema) error {
	models := make(map[string]bool)

	for _, m := range s.Models() {
		if len(m.Columns) == 0 {
			return errors.Errorf("%s: model %q must declare at least one column", m.Pos, m.Name)
		}
		if models[m.Name] {
			return errors.Errorf("%s: duplicate model name %q", m.Pos, m.Name)
		}
		models[m.Name] = true

		columns := make(map[string]bool)
		for _, c := range m.Columns {
			if columns[c.Name] {
				return errors.Errorf("%s: duplicate column %q in model %q", c.Pos, c.Name, m.Name)
			}
			columns[c.Name] = true

			decorators := make(map[string]bool)
			for _, d := range c.Decorators {
				if decorators[d.Name()] {
					return errors.Errorf(
						"%s: duplicate decorator @%s on column %q of model %q",
						d.Pos, d.Name(), c.Name, m.Name,
					)
				}
				decorators[d.Name()] = true
			}
		}
	}

	return nil
}
