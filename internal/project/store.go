package project

import (
	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/model"
)

// Store edits a project in place. Parameters shared by every tray live once
// in Project.Globals, so an edit made through any tray is seen by all of
// them without copying.
type Store struct {
	Project model.Project
	config  *model.AppConfig
}

// NewStore wraps p. When config is non-nil its defaults seed new boxes and
// trays.
func NewStore(p model.Project, config *model.AppConfig) *Store {
	normalize(&p)
	return &Store{Project: p, config: config}
}

// TrayUpdate is an edit made through one tray. Nil fields are left as they
// are. Tray applies to that tray only; the remaining fields are shared and
// apply to the whole project.
type TrayUpdate struct {
	Tray             *model.TrayParams
	PrintBedSize     *float64
	CounterThickness *float64
	CustomShapes     []model.CustomShape
}

// AddBox appends a new empty box and returns it.
func (s *Store) AddBox(name string) *model.Box {
	b := model.NewBox(name)
	if s.config != nil {
		s.config.ApplyToBox(&b)
	}
	s.Project.Boxes = append(s.Project.Boxes, b)
	return &s.Project.Boxes[len(s.Project.Boxes)-1]
}

// DeleteBox removes a box together with its trays.
func (s *Store) DeleteBox(boxID string) error {
	i := s.boxIndex(boxID)
	if i < 0 {
		return faults.New(faults.ErrCodeNotFound, "box %q not found", boxID)
	}
	s.Project.Boxes = append(s.Project.Boxes[:i], s.Project.Boxes[i+1:]...)
	return nil
}

// Box returns the box with the given ID.
func (s *Store) Box(boxID string) (*model.Box, error) {
	i := s.boxIndex(boxID)
	if i < 0 {
		return nil, faults.New(faults.ErrCodeNotFound, "box %q not found", boxID)
	}
	return &s.Project.Boxes[i], nil
}

// BoxIndex returns the position of a box, or -1.
func (s *Store) BoxIndex(boxID string) int {
	return s.boxIndex(boxID)
}

// AddTray appends a new tray to a box. Its colour comes from the project's
// creation counter, so colours stay distinct across boxes.
func (s *Store) AddTray(boxID, name string) (*model.Tray, error) {
	b, err := s.Box(boxID)
	if err != nil {
		return nil, err
	}
	t := model.NewTray(name, s.Project.NextColorIndex)
	s.Project.NextColorIndex++
	if s.config != nil {
		s.config.ApplyToTray(&t.Params)
	}
	b.Trays = append(b.Trays, t)
	return &b.Trays[len(b.Trays)-1], nil
}

// DeleteTray removes a tray from whichever box holds it.
func (s *Store) DeleteTray(trayID string) error {
	bi, ti := s.trayIndex(trayID)
	if bi < 0 {
		return faults.New(faults.ErrCodeNotFound, "tray %q not found", trayID)
	}
	b := &s.Project.Boxes[bi]
	b.Trays = append(b.Trays[:ti], b.Trays[ti+1:]...)
	return nil
}

// MoveTray moves a tray to the end of another box, keeping its ID.
func (s *Store) MoveTray(trayID, toBoxID string) error {
	bi, ti := s.trayIndex(trayID)
	if bi < 0 {
		return faults.New(faults.ErrCodeNotFound, "tray %q not found", trayID)
	}
	to := s.boxIndex(toBoxID)
	if to < 0 {
		return faults.New(faults.ErrCodeNotFound, "box %q not found", toBoxID)
	}
	from := &s.Project.Boxes[bi]
	t := from.Trays[ti]
	from.Trays = append(from.Trays[:ti], from.Trays[ti+1:]...)
	s.Project.Boxes[to].Trays = append(s.Project.Boxes[to].Trays, t)
	return nil
}

// Tray returns the tray with the given ID.
func (s *Store) Tray(trayID string) (*model.Tray, error) {
	bi, ti := s.trayIndex(trayID)
	if bi < 0 {
		return nil, faults.New(faults.ErrCodeNotFound, "tray %q not found", trayID)
	}
	return &s.Project.Boxes[bi].Trays[ti], nil
}

// Resolved returns the engine's view of a tray: shared plus tray-owned
// parameters.
func (s *Store) Resolved(trayID string) (model.ResolvedParams, error) {
	t, err := s.Tray(trayID)
	if err != nil {
		return model.ResolvedParams{}, err
	}
	return model.ResolvedParams{Global: s.Project.Globals, Tray: t.Params}, nil
}

// UpdateTrayParams applies an edit made through one tray: the tray-owned
// part to that tray, the shared part to the project.
func (s *Store) UpdateTrayParams(trayID string, u TrayUpdate) error {
	t, err := s.Tray(trayID)
	if err != nil {
		return err
	}
	if u.Tray != nil {
		t.Params = u.Tray.Clone()
	}
	g := &s.Project.Globals
	if u.PrintBedSize != nil {
		g.PrintBedSize = *u.PrintBedSize
	}
	if u.CounterThickness != nil {
		g.CounterThickness = *u.CounterThickness
	}
	if u.CustomShapes != nil {
		g.CustomShapes = append([]model.CustomShape{}, u.CustomShapes...)
		NormalizeShapeRefs(&s.Project)
	}
	return nil
}

// AddCustomShape registers a shape with the project. A shape without an ID
// is given one; names must be unique.
func (s *Store) AddCustomShape(shape model.CustomShape) (model.CustomShape, error) {
	if shape.Name == "" {
		return model.CustomShape{}, faults.New(faults.ErrCodeInvalidInput, "custom shape has no name")
	}
	if _, taken := s.Project.Globals.FindCustomShape(shape.Name); taken {
		return model.CustomShape{}, faults.New(faults.ErrCodeInvalidInput, "custom shape %q already exists", shape.Name)
	}
	if shape.ID == "" {
		shape.ID = model.NewCustomShape(shape.Name, shape.BaseShape, shape.Width, shape.Length).ID
	}
	s.Project.Globals.CustomShapes = append(s.Project.Globals.CustomShapes, shape)
	return shape, nil
}

// RenameCustomShape renames a shape. Stacks reference shapes by ID, so no
// stack needs rewriting.
func (s *Store) RenameCustomShape(id, name string) error {
	if name == "" {
		return faults.New(faults.ErrCodeInvalidInput, "custom shape name must not be empty")
	}
	shapes := s.Project.Globals.CustomShapes
	idx := -1
	for i := range shapes {
		if shapes[i].ID == id {
			idx = i
		} else if shapes[i].Name == name {
			return faults.New(faults.ErrCodeInvalidInput, "custom shape %q already exists", name)
		}
	}
	if idx < 0 {
		return faults.New(faults.ErrCodeNotFound, "custom shape %q not found", id)
	}
	shapes[idx].Name = name
	return nil
}

// DeleteCustomShape removes a shape and returns how many stacks still
// reference it; those fall back to the square shape when laid out.
func (s *Store) DeleteCustomShape(id string) (int, error) {
	shapes := s.Project.Globals.CustomShapes
	for i := range shapes {
		if shapes[i].ID != id {
			continue
		}
		s.Project.Globals.CustomShapes = append(shapes[:i], shapes[i+1:]...)
		ref := model.CustomRef(id)
		n := 0
		for _, b := range s.Project.Boxes {
			for _, t := range b.Trays {
				for _, st := range append(append([]model.StackSpec(nil), t.Params.TopLoaded...), t.Params.EdgeLoaded...) {
					if st.Shape == ref {
						n++
					}
				}
			}
		}
		return n, nil
	}
	return 0, faults.New(faults.ErrCodeNotFound, "custom shape %q not found", id)
}

func (s *Store) boxIndex(boxID string) int {
	for i, b := range s.Project.Boxes {
		if b.ID == boxID {
			return i
		}
	}
	return -1
}

func (s *Store) trayIndex(trayID string) (int, int) {
	for bi, b := range s.Project.Boxes {
		for ti, t := range b.Trays {
			if t.ID == trayID {
				return bi, ti
			}
		}
	}
	return -1, -1
}
