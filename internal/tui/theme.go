package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for voicescribe terminal output.
// Each color has a light and a dark variant; lipgloss picks one from the terminal background.
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"} // Teal - main accent
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"} // Violet - selections

	ColorSuccess = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

	ColorText   = lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#F8FAFC"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"}
	ColorSubtle = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#64748B"}
)
