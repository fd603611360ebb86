package domain

// LabelMap translates short codes parsed from filenames into display names.
type LabelMap struct {
	Groups   map[string]string `yaml:"turma"`
	Subjects map[string]string `yaml:"disciplina"`
}

// EmptyLabelMap returns a map that resolves every code to itself.
func EmptyLabelMap() LabelMap {
	return LabelMap{Groups: map[string]string{}, Subjects: map[string]string{}}
}

// Group resolves a group code, falling back to the code itself.
func (m LabelMap) Group(code string) string {
	return lookup(m.Groups, code)
}

// Subject resolves a subject code, falling back to the code itself.
func (m LabelMap) Subject(code string) string {
	return lookup(m.Subjects, code)
}

func lookup(names map[string]string, code string) string {
	if name, ok := names[code]; ok && name != "" {
		return name
	}
	return code
}
