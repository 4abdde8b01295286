package web

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"
	"time"

	"feedwatch/internal/config"
	"feedwatch/internal/database"
	"feedwatch/internal/models"
	"feedwatch/internal/poller"
	"feedwatch/internal/reporter"
)

type Handler struct {
	config   *config.Config
	repo     *database.Repository
	poller   *poller.Service
	reporter *reporter.Reporter
}

func NewHandler(cfg *config.Config, repo *database.Repository, poll *poller.Service) *Handler {
	return &Handler{
		config:   cfg,
		repo:     repo,
		poller:   poll,
		reporter: reporter.New(cfg, repo),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/history", h.handleHistory)
	mux.HandleFunc("/api/errors", h.handleErrors)
	mux.HandleFunc("/api/report", h.handleReport)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

// handleStatus serves the latest published view. The full view is re-emitted
// every poll; there is no diff contract.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view := h.poller.Latest()

	if r.Header.Get("HX-Request") == "true" {
		h.respondStatusHTML(w, view)
		return
	}

	if view == nil {
		http.Error(w, "No status available yet", http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, view)
}

func (h *Handler) respondStatusHTML(w http.ResponseWriter, view *models.StatusView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if view == nil {
		w.Write([]byte(`<div class="loading">Waiting for first poll...</div>`))
		return
	}

	if view.Error != "" {
		fmt.Fprintf(w, `<div class="error">Could not reach the beacon log: %s</div>`, html.EscapeString(view.Error))
		return
	}

	html := `<div class="meals">`
	for _, meal := range view.Meals {
		badge := `<span class="badge unfed">not yet</span>`
		detail := fmt.Sprintf("window %02d:00&ndash;%02d:00", meal.StartHour, meal.EndHour)
		if meal.Fed {
			badge = `<span class="badge fed">fed</span>`
			detail = fmt.Sprintf("at %s &middot; %s", meal.FedAt.Format("15:04"), meal.FedAgo)
		}
		html += fmt.Sprintf(`
		<div class="meal">
			<span class="meal-name">%s</span>
			%s
			<span class="meal-detail">%s</span>
		</div>`, meal.Name, badge, detail)
	}
	html += `</div>`

	lastSeen := "no activity recorded"
	if view.LastEventAt != nil {
		lastSeen = fmt.Sprintf("last activity %s (%s)", view.LastEventAt.Format("15:04"), view.LastEventAgo)
	}

	html += fmt.Sprintf(`<div class="footer">%d/%d fed &middot; %s &middot; updated %s</div>`,
		view.SatisfiedCount, view.TotalWindows, lastSeen, view.GeneratedAt.Format("15:04:05"))

	w.Write([]byte(html))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.repo == nil {
		http.Error(w, "History not enabled", http.StatusNotFound)
		return
	}

	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	cycles, err := h.repo.GetCyclesSince(time.Now().AddDate(0, 0, -days))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch history: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, cycles)
}

// handleErrors serves recent fetch failures, newest first.
func (h *Handler) handleErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.repo == nil {
		http.Error(w, "History not enabled", http.StatusNotFound)
		return
	}

	days := 1
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	errs, err := h.repo.GetRecentErrors(time.Now().AddDate(0, 0, -days))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch error history: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, errs)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.repo == nil {
		http.Error(w, "History not enabled", http.StatusNotFound)
		return
	}

	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	report, err := h.reporter.GenerateReport(days)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, report)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}

	if h.repo != nil {
		if cycle, err := h.repo.GetLatestCycle(); err == nil && cycle != nil {
			health["last_poll"] = cycle.PolledAt.Format(time.RFC3339)
		}
	}

	respondJSON(w, health)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Feedwatch</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --bg-primary: #f5f5f5;
            --bg-secondary: white;
            --text-primary: #333;
            --text-muted: #7f8c8d;
            --border-color: #eee;
            --fed-color: #27ae60;
            --unfed-color: #e67e22;
            --error-color: #c0392b;
            --heading-color: #2c3e50;
            --shadow: rgba(0,0,0,0.1);
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: var(--bg-primary);
            padding: 20px;
            color: var(--text-primary);
        }

        h1 {
            color: var(--heading-color);
            font-size: 2rem;
            margin-bottom: 20px;
        }

        .card {
            background: var(--bg-secondary);
            border-radius: 8px;
            padding: 20px;
            max-width: 520px;
            box-shadow: 0 2px 4px var(--shadow);
        }

        .meal {
            display: flex;
            align-items: center;
            gap: 12px;
            padding: 12px 0;
            border-bottom: 1px solid var(--border-color);
        }

        .meal-name {
            font-weight: 600;
            text-transform: capitalize;
            min-width: 100px;
        }

        .meal-detail {
            color: var(--text-muted);
            font-size: 0.9rem;
        }

        .badge {
            border-radius: 50px;
            padding: 2px 12px;
            font-size: 0.8rem;
            text-transform: uppercase;
            color: white;
        }

        .badge.fed { background: var(--fed-color); }
        .badge.unfed { background: var(--unfed-color); }

        .footer {
            padding-top: 12px;
            color: var(--text-muted);
            font-size: 0.85rem;
        }

        .loading { color: var(--text-muted); }
        .error { color: var(--error-color); }
    </style>
</head>
<body>
    <h1>Feedwatch</h1>
    <div class="card" hx-get="/api/status" hx-trigger="load, every 30s">
        <div class="loading">Loading...</div>
    </div>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
