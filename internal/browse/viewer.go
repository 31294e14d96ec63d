package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"internradar/internal/model"
)

// Lines per posting item in the list view (title + subtitle + blank separator).
const postingItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	postingTitleStyle = lipgloss.NewStyle().
				Bold(true)

	postingSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type browseModel struct {
	owner    model.Owner
	postings []model.Posting

	listViewport viewport.Model
	cursor       int
	width        int
	height       int
	ready        bool

	view            viewState
	detailViewport  viewport.Model
	showDescription bool

	wantQuit bool
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.postings)-1, 0))
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.postings)-1, 0))
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.postings[m.cursor].Link)
		return m, nil
	case "r":
		if m.postings[m.cursor].Description != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.postings) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.showDescription = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) ensureCursorVisible() {
	cursorTop := m.cursor * postingItemHeight
	cursorBottom := cursorTop + postingItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m *browseModel) recalcLayout() {
	width := max(m.width-2, 20)
	// Header (1) + border top/bottom (2) + status bar (1).
	height := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.listViewport.Width = width
		m.listViewport.Height = height
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(renderPostings(m.postings, m.cursor))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf(" %s — %d postings", m.owner.Name, len(m.postings)))
	pane := activeBorderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(
		" ↑/↓ cursor  Enter detail  Esc back  q quit")
	return header + "\n" + pane + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Posting Details")
	content := activeBorderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	statusText := " o open link  esc/backspace back  ↑/↓ scroll  q quit"
	if m.postings[m.cursor].Description != "" {
		statusText = " o open link  r description  esc/backspace back  ↑/↓ scroll  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	p := m.postings[m.cursor]
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", p.Title)
	addField("Owner", m.owner.Name)
	addField("Category", string(p.Category))
	addField("Location", p.Location)
	addField("Salary", p.SalaryInfo)
	addField("Source", p.SourceLabel)

	b.WriteByte('\n')
	addField("Posted", p.PostingDate.Format("2006-01-02"))
	addField("Discovered", p.DiscoveryDate.Format("2006-01-02 15:04"))
	if !p.IsActive {
		addField("Status", "inactive")
	}

	b.WriteByte('\n')
	addField("Link", p.Link)

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	if p.RequirementsSummary != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Requirements ") + "\n\n")
		b.WriteString(bodyStyle.Render(p.RequirementsSummary) + "\n")
	}

	if p.Description != "" {
		b.WriteByte('\n')
		if m.showDescription {
			b.WriteString(divider("── Full Description ") + "\n\n")
			b.WriteString(bodyStyle.Render(wordWrap(p.Description, wrapWidth)) + "\n")
		} else {
			b.WriteString(hintStyle.Render("  press r to read the full description") + "\n")
		}
	}

	return b.String()
}

func renderPostings(postings []model.Posting, cursor int) string {
	if len(postings) == 0 {
		return "  (no postings)"
	}

	var b strings.Builder
	for i, p := range postings {
		titleSt := postingTitleStyle
		subtitleSt := postingSubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(p.Title))
		b.WriteByte('\n')

		subtitle := fmt.Sprintf("%s · %s · %s", p.Category, p.Location, p.DiscoveryDate.Format("2006-01-02"))
		if p.Location == "" {
			subtitle = fmt.Sprintf("%s · %s", p.Category, p.DiscoveryDate.Format("2006-01-02"))
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(subtitle))
		b.WriteByte('\n')

		if i < len(postings)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunBrowser launches the posting list for one owner. It returns wantQuit=true
// if the user pressed q/ctrl+c, false if they pressed esc to return to the
// picker.
func RunBrowser(owner model.Owner, postings []model.Posting) (bool, error) {
	m := browseModel{
		owner:    owner,
		postings: postings,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(browseModel)
	return final.wantQuit, nil
}
