package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/internal/upstream"
	"github.com/olekukonko/tablewriter"
)

// renderTable writes header followed by rows. tablewriter has no SetHeader in
// this version, so the header is the first appended row.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	if err := table.Append(header); err != nil {
		return fmt.Errorf("append header row: %w", err)
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	return table.Render()
}

func renderComplaints(w io.Writer, list []models.Complaint) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No complaints found")
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{
			c.ID,
			truncate(c.Title, 32),
			c.Category,
			c.Priority,
			c.Status,
			formatDate(c.CreatedAt),
		})
	}
	return renderTable(w, []string{"ID", "Title", "Category", "Priority", "Status", "Created"}, rows)
}

func renderComplaint(w io.Writer, c *models.Complaint) error {
	rows := [][]string{
		{"ID", c.ID},
		{"Title", c.Title},
		{"Description", truncate(c.Description, 60)},
		{"Category", c.Category},
		{"Priority", c.Priority},
		{"Department", c.Department},
		{"Type", c.Type},
		{"Submitted by", c.UserType},
		{"Domain", c.Domain},
		{"Status", c.Status},
		{"AI analyzed", strconv.FormatBool(c.AIAnalyzed)},
	}
	return renderTable(w, []string{"Field", "Value"}, rows)
}

func renderAnalysis(w io.Writer, a *models.Analysis) error {
	rows := [][]string{
		{"Category", a.Category},
		{"Priority", a.Priority},
		{"Department", a.Department},
		{"Type", a.Type},
		{"Confidence", fmt.Sprintf("%.0f%%", a.Confidence)},
	}
	if a.Sentiment != "" {
		rows = append(rows, []string{"Sentiment", a.Sentiment})
	}
	if len(a.Keywords) > 0 {
		rows = append(rows, []string{"Keywords", strings.Join(a.Keywords, ", ")})
	}
	return renderTable(w, []string{"Field", "Value"}, rows)
}

func renderStats(w io.Writer, s *services.DashboardStats) error {
	rows := [][]string{
		{"Total", strconv.Itoa(s.Total)},
		{"Pending", strconv.Itoa(s.Pending)},
		{"In Progress", strconv.Itoa(s.InProgress)},
		{"Resolved", strconv.Itoa(s.Resolved)},
		{"Rejected", strconv.Itoa(s.Rejected)},
		{"Critical", strconv.Itoa(s.Critical)},
		{"Resolution rate", strconv.Itoa(s.ResolutionRate) + "%"},
	}
	return renderTable(w, []string{"Metric", "Value"}, rows)
}

func renderHealth(w io.Writer, report *upstream.HealthReport) error {
	names := make([]string, 0, len(report.Services))
	for name := range report.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		sh := report.Services[name]
		rows = append(rows, []string{name, sh.Status, sh.URL, fmt.Sprintf("%dms", sh.LatencyMS), sh.Message})
	}
	if err := renderTable(w, []string{"Service", "Status", "URL", "Latency", "Message"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Overall: %s\n", report.Status)
	return err
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
