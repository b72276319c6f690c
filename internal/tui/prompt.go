package tui

import (
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// Option is one choice of a Select prompt.
type Option struct {
	Label string
	Value string
}

// Prompter asks the user for input.
type Prompter interface {
	Text(title, placeholder string, validate func(string) error) (string, error)
	Select(title string, options []Option, initial string) (string, error)
	Confirm(title string, initial bool) (bool, error)
}

// HuhPrompter asks with huh forms, one field per form.
type HuhPrompter struct {
	theme *huh.Theme
}

// NewHuhPrompter creates a HuhPrompter
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{theme: NewHuhTheme()}
}

func (p *HuhPrompter) run(field huh.Field, keyMap *huh.KeyMap) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen())
	if keyMap != nil {
		form = form.WithKeyMap(keyMap)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return fmt.Errorf("failed to run prompt: %w", err)
	}
	return nil
}

func (p *HuhPrompter) Text(title, placeholder string, validate func(string) error) (string, error) {
	value := ""
	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}
	if err := p.run(input, nil); err != nil {
		return "", err
	}
	return value, nil
}

func (p *HuhPrompter) Select(title string, options []Option, initial string) (string, error) {
	value := initial
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.Label, o.Value))
	}

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Select.Filter.SetEnabled(false)

	sel := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&value)
	if err := p.run(sel, keyMap); err != nil {
		return "", err
	}
	return value, nil
}

func (p *HuhPrompter) Confirm(title string, initial bool) (bool, error) {
	value := initial
	confirm := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := p.run(confirm, nil); err != nil {
		return false, err
	}
	return value, nil
}

// StaticPrompter answers from fixed tables keyed by prompt title. Unknown
// titles get the initial value, or ErrCancelled for text prompts.
type StaticPrompter struct {
	mu       sync.Mutex
	Texts    map[string]string
	Selects  map[string]string
	Confirms map[string]bool
	asked    []string
}

// NewStaticPrompter creates an empty StaticPrompter
func NewStaticPrompter() *StaticPrompter {
	return &StaticPrompter{
		Texts:    make(map[string]string),
		Selects:  make(map[string]string),
		Confirms: make(map[string]bool),
	}
}

func (s *StaticPrompter) Text(title, placeholder string, validate func(string) error) (string, error) {
	s.record(title)
	v, ok := s.Texts[title]
	if !ok {
		return "", ErrCancelled
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return "", err
		}
	}
	return v, nil
}

func (s *StaticPrompter) Select(title string, options []Option, initial string) (string, error) {
	s.record(title)
	v, ok := s.Selects[title]
	if !ok {
		return initial, nil
	}
	for _, o := range options {
		if o.Value == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%q is not an option of %q", v, title)
}

func (s *StaticPrompter) Confirm(title string, initial bool) (bool, error) {
	s.record(title)
	if v, ok := s.Confirms[title]; ok {
		return v, nil
	}
	return initial, nil
}

// Asked returns the prompt titles in the order they were asked
func (s *StaticPrompter) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

func (s *StaticPrompter) record(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, title)
}
