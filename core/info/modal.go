// Package info holds the "About the portal" overlay shown from the login page.
package info

type (
	Feature struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}

	Role struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}

	// Modal is static; whoever renders it decides when it is visible.
	Modal struct {
		Title        string    `json:"title"`
		WelcomeTitle string    `json:"welcome_title"`
		Welcome      string    `json:"welcome"`
		Features     []Feature `json:"features"`
		RolesTitle   string    `json:"roles_title"`
		Roles        []Role    `json:"roles"`
		DismissLabel string    `json:"dismiss_label"`

		onClose func()
	}
)

// New returns the modal content; onClose is called when the user dismisses it.
func New(onClose func()) *Modal {
	return &Modal{
		Title:        "About the NBA OBE Portal",
		WelcomeTitle: "Welcome!",
		Welcome: "The NBA Outcome Based Education (OBE) Portal is a comprehensive tool designed for educational " +
			"institutions to manage, track, and automate the complex process of calculating Course Outcome (CO) and " +
			"Program Outcome (PO) attainment, in line with NBA guidelines.",
		Features: []Feature{
			{
				Title: "Automated Attainment Calculation",
				Text:  "Eliminates manual spreadsheets for CO and PO attainment.",
			},
			{
				Title: "Centralized Data Management",
				Text:  "A single source of truth for curriculum, faculty, students, and assessments.",
			},
			{
				Title: "Role-Based Access",
				Text:  "A secure system where each user only sees what's relevant to their role.",
			},
			{
				Title: "Streamlined Workflows",
				Text:  "Easy-to-use interfaces for managing courses, defining outcomes, and uploading marks.",
			},
			{
				Title: "Report Generation",
				Text:  "Download professional, print-ready PDF reports for accreditation and review.",
			},
		},
		RolesTitle: "User Roles & Responsibilities",
		Roles: []Role{
			{
				Title: "Administrator",
				Text: "The system superuser. Manages the entire academic structure (colleges, programs), " +
					"all user accounts, and system-wide default settings.",
			},
			{
				Title: "Department Head",
				Text: "Manages a specific college/department. Responsible for assigning Program Co-ordinators to " +
					"programs and teachers to their respective PCs. Also manages student section assignments.",
			},
			{
				Title: "Program Co-ordinator (PC)",
				Text: "Manages an entire academic program. Defines POs, creates courses, manages COs, assigns " +
					"teachers to courses, and oversees the entire attainment process for their program.",
			},
			{
				Title: "Teacher",
				Text: "Manages their assigned courses. Defines COs, creates assessments, maps questions to COs, " +
					"uploads student marks, and views attainment results for their classes.",
			},
		},
		DismissLabel: "Got it!",
		onClose:      onClose,
	}
}

// Close dismisses the modal.
func (m *Modal) Close() {
	if m != nil && m.onClose != nil {
		m.onClose()
	}
}
