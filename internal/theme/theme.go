package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Title     *lipgloss.Style
	AltSpeed  *lipgloss.Style
	Header    *lipgloss.Style
	Row       *lipgloss.Style
	Selected  *lipgloss.Style
	Marked    *lipgloss.Style
	Filtered  *lipgloss.Style
	Separator *lipgloss.Style

	Downloading *lipgloss.Style
	Seeding     *lipgloss.Style
	Paused      *lipgloss.Style
	Verifying   *lipgloss.Style
	Queued      *lipgloss.Style
	Isolated    *lipgloss.Style
	Errored     *lipgloss.Style

	StatusLine *lipgloss.Style
	Degraded   *lipgloss.Style
	Info       *lipgloss.Style
	Error      *lipgloss.Style

	TabActive   *lipgloss.Style
	TabInactive *lipgloss.Style
	DetailLabel *lipgloss.Style
	DetailValue *lipgloss.Style

	PromptLabel *lipgloss.Style
	PromptText  *lipgloss.Style
	Placeholder *lipgloss.Style
	Cursor      *lipgloss.Style
	Danger      *lipgloss.Style
	Help        *lipgloss.Style
}

var defaultStyles = Styles{
	Title: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("24")).Bold(true),
	),
	AltSpeed: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("178")).Background(lipgloss.Color("24")).Bold(true),
	),
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true).Underline(true),
	),
	Row: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Selected: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	Marked: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	),
	Filtered: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	),
	Separator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	),
	Downloading: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	),
	Seeding: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	),
	Paused: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	Verifying: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	),
	Queued: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	),
	Isolated: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	),
	Errored: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	StatusLine: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Degraded: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("178")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	TabActive: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true).Underline(true),
	),
	TabInactive: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	DetailLabel: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	DetailValue: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	),
	PromptLabel: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	PromptText: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Placeholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Cursor: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")),
	),
	Danger: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Help: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
