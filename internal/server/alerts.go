package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/notify"
)

const alertDeliveryTimeout = time.Minute

// AlertmanagerPayload corresponds to the JSON structure sent by Alertmanager.
type AlertmanagerPayload struct {
	Receiver string  `json:"receiver"`
	Status   string  `json:"status"`
	Alerts   []Alert `json:"alerts"`
}

// Alert contains detail information about the one notification.
type Alert struct {
	Status      string            `json:"status"`
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    time.Time         `json:"startsAt"`
	EndsAt      time.Time         `json:"endsAt"`
}

// AdminDirectory lists the accounts alerts go to.
type AdminDirectory interface {
	AdminRecipients(ctx context.Context) ([]models.Account, error)
}

// AlertSender fans an alert out to the given admins.
type AlertSender interface {
	Alert(ctx context.Context, admins []models.Account, text string) notify.Report
}

// AlertHandler forwards Alertmanager webhooks to every admin.
type AlertHandler struct {
	log    *slog.Logger
	admins AdminDirectory
	sender AlertSender
}

func NewAlertHandler(log *slog.Logger, admins AdminDirectory, sender AlertSender) *AlertHandler {
	return &AlertHandler{log: log, admins: admins, sender: sender}
}

func (h *AlertHandler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(writer, "Only POST requests are accepted", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		h.log.ErrorContext(req.Context(), "Failed to read webhook body", "error", err)
		http.Error(writer, "Failed to read request body", http.StatusInternalServerError)
		return
	}
	defer req.Body.Close()

	var payload AlertmanagerPayload
	if err = json.Unmarshal(body, &payload); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to unmarshal webhook payload", "error", err, "body", string(body))
		http.Error(writer, "Failed to decode payload", http.StatusBadRequest)
		return
	}

	admins, err := h.admins.AdminRecipients(req.Context())
	if err != nil {
		h.log.ErrorContext(req.Context(), "Failed to get admins for alert", "error", err)
	}

	if len(admins) == 0 {
		h.log.WarnContext(req.Context(), "No admins found to send alerts to.")
		writer.WriteHeader(http.StatusOK)
		return
	}

	// delivery outlives the request
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), alertDeliveryTimeout)
	go func() {
		defer cancel()
		for _, alert := range payload.Alerts {
			report := h.sender.Alert(ctx, admins, formatAlertMessage(alert))
			for _, failed := range report.Failed() {
				h.log.WarnContext(ctx, "Failed to send alert to admin", "admin_id", failed.ChatID, "error", failed.Err)
			}
		}
	}()

	writer.WriteHeader(http.StatusOK)
	if _, err = writer.Write([]byte("Alerts received successfully.")); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to send success message to requester", "error", err)
	}
}

// formatAlertMessage formats the one alert in readable message for Telegram.
func formatAlertMessage(alert Alert) string {
	var icon string
	status := strings.ToUpper(alert.Status)
	if status == "FIRING" {
		icon = "🔥"
	} else {
		icon = "✅"
	}

	summary := alert.Annotations["summary"]
	description := alert.Annotations["description"]
	job := alert.Labels["job"]
	severity := alert.Labels["severity"]

	var messageBuilder strings.Builder
	messageBuilder.WriteString(fmt.Sprintf("%s *%s* (%s)\n\n", icon, status, severity))
	messageBuilder.WriteString(fmt.Sprintf("*Summary*: %s\n", summary))
	if description != "" {
		messageBuilder.WriteString(fmt.Sprintf("*Description*: %s\n", description))
	}
	if job != "" {
		messageBuilder.WriteString(fmt.Sprintf("*Service*: `%s`\n", job))
	}

	return messageBuilder.String()
}
