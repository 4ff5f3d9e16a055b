package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/harness"
	"github.com/wippyai/wasm-spectest/internal/wasmbin"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	typeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4"))
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func newExploreCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explore <file.wasm>",
		Short: "Instantiate a module against the spectest environment and call its exports interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newExploreModel(args[0], root.harnessOptions()...)
			defer m.close()
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return newExitError(exitFailure, "explore", err)
			}
			return nil
		},
	}
}

type exploreState int

const (
	stateSelectFunc exploreState = iota
	stateInputArgs
	stateShowResult
)

type funcInfo struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

type exploreModel struct {
	opts     []harness.Option
	filename string

	h    *harness.Harness
	inst *harness.Instance

	err      error
	loading  bool
	result   string
	funcs    []funcInfo
	inputs   []textinput.Model
	spinner  spinner.Model
	selected int
	focusIdx int
	state    exploreState
}

func newExploreModel(filename string, opts ...harness.Option) *exploreModel {
	return &exploreModel{
		opts:     opts,
		filename: filename,
		loading:  true,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		state:    stateSelectFunc,
	}
}

type loadedMsg struct {
	err   error
	h     *harness.Harness
	inst  *harness.Instance
	funcs []funcInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *exploreModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m *exploreModel) load() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	h, err := harness.New(ctx, m.opts...)
	if err != nil {
		return loadedMsg{err: err}
	}

	inst, err := h.Instance(ctx, data, nil)
	if err != nil {
		h.Close(ctx)
		return loadedMsg{err: err}
	}

	var funcs []funcInfo
	for name, def := range inst.Module().ExportedFunctionDefinitions() {
		funcs = append(funcs, funcInfo{name: name, params: def.ParamTypes(), results: def.ResultTypes()})
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].name < funcs[j].name })

	return loadedMsg{h: h, inst: inst, funcs: funcs}
}

func (m *exploreModel) close() {
	if m.h != nil {
		m.h.Close(context.Background())
		m.h = nil
	}
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.call
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.call

			case stateShowResult:
				m.reset()
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state != stateSelectFunc {
				m.reset()
			}
		}

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.h = msg.h
		m.inst = msg.inst
		m.funcs = msg.funcs

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *exploreModel) reset() {
	m.state = stateSelectFunc
	m.inputs = nil
	m.result = ""
	m.err = nil
}

func (m *exploreModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.params))
	for i, t := range f.params {
		ti := textinput.New()
		ti.Placeholder = wasmbin.ValTypeName(t)
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *exploreModel) call() tea.Msg {
	if m.inst == nil {
		return callResultMsg{err: errors.NotFound(errors.PhaseInvoke, "module", m.filename)}
	}

	f := m.funcs[m.selected]
	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		v, err := parseArg(input.Value(), f.params[i])
		if err != nil {
			return callResultMsg{err: err}
		}
		args[i] = v
	}

	results, err := m.h.Call(context.Background(), m.inst, f.name, args...)
	if err != nil {
		return callResultMsg{err: err}
	}

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.String()
	}
	return callResultMsg{result: "(" + strings.Join(out, ", ") + ")"}
}

// parseArg reads a typed argument. Integers accept Go literal prefixes and
// either sign interpretation of the bit pattern.
func parseArg(s string, t api.ValueType) (harness.Value, error) {
	s = strings.TrimSpace(s)
	switch t {
	case api.ValueTypeI32:
		if v, err := strconv.ParseInt(s, 0, 32); err == nil {
			return harness.I32(int32(v)), nil
		}
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return harness.Value{}, argErr(s, t, err)
		}
		return harness.I32(int32(uint32(v))), nil
	case api.ValueTypeI64:
		if v, err := strconv.ParseInt(s, 0, 64); err == nil {
			return harness.I64(v), nil
		}
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return harness.Value{}, argErr(s, t, err)
		}
		return harness.I64(int64(v)), nil
	case api.ValueTypeF32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return harness.Value{}, argErr(s, t, err)
		}
		return harness.F32(float32(v)), nil
	case api.ValueTypeF64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return harness.Value{}, argErr(s, t, err)
		}
		return harness.F64(v), nil
	case api.ValueTypeExternref:
		if s == "" || s == "null" {
			return harness.NullExternRef(), nil
		}
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return harness.Value{}, argErr(s, t, err)
		}
		return harness.ExternRef(v), nil
	case wasmbin.ValueTypeFuncref:
		if s == "" || s == "null" {
			return harness.NullFuncRef(), nil
		}
		return harness.Value{}, errors.Unsupported(errors.PhaseInvoke, "non-null funcref argument")
	default:
		return harness.Value{}, errors.Unsupported(errors.PhaseInvoke, "argument type "+wasmbin.ValTypeName(t))
	}
}

func argErr(s string, t api.ValueType, cause error) error {
	return errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
		Detail("%q is not a valid %s", s, wasmbin.ValTypeName(t)).Cause(cause).Build()
}

func (m *exploreModel) View() string {
	if m.loading {
		return m.spinner.View() + " Loading " + m.filename + "..."
	}
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	header := titleStyle.Render("spectest explore") + " " + m.filename + "\n\n"
	switch m.state {
	case stateInputArgs:
		return header + m.viewInputs()
	case stateShowResult:
		return header + m.viewResult()
	default:
		return header + m.viewFuncs()
	}
}

func (m *exploreModel) viewFuncs() string {
	if len(m.funcs) == 0 {
		return "No exported functions.\n\n" + helpStyle.Render("q quit")
	}

	lines := make([]string, 0, len(m.funcs)+3)
	lines = append(lines, "Select a function to call:", "")
	for i, f := range m.funcs {
		if i == m.selected {
			lines = append(lines, selectedStyle.Render("> "+formatFunc(f)))
		} else {
			lines = append(lines, "  "+formatFunc(f))
		}
	}
	lines = append(lines, "", helpStyle.Render("↑/↓ select • enter call • q quit"))
	return strings.Join(lines, "\n")
}

func (m *exploreModel) viewInputs() string {
	f := m.funcs[m.selected]
	lines := []string{"Calling " + funcStyle.Render(f.name), ""}
	for i, input := range m.inputs {
		lines = append(lines, input.View()+" "+typeStyle.Render(wasmbin.ValTypeName(f.params[i])))
	}
	lines = append(lines, "", helpStyle.Render("tab next field • enter call • esc back"))
	return strings.Join(lines, "\n")
}

func (m *exploreModel) viewResult() string {
	f := m.funcs[m.selected]
	out := resultStyle.Render(m.result)
	if m.err != nil {
		out = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return "Result of " + funcStyle.Render(f.name) + ":\n\n" + out + "\n\n" + helpStyle.Render("enter continue • q quit")
}

func formatFunc(f funcInfo) string {
	return funcStyle.Render(f.name) + " " + typeStyle.Render(signature(f.params, f.results))
}
