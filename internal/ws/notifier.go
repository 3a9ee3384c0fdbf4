package ws

import (
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/goroutine"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
)

// EventReportUpdated — событие смены статуса заявки.
const EventReportUpdated = "report.updated"

// Presenter превращает заявку в публичное представление без контактов заявителя.
type Presenter func(*entity.Report) any

// ReportNotifier рассылает обновления заявок подписчикам заявки и администраторам.
type ReportNotifier struct {
	hub     *Hub
	present Presenter
}

func NewReportNotifier(hub *Hub, present Presenter) *ReportNotifier {
	return &ReportNotifier{hub: hub, present: present}
}

// NotifyReportUpdated не блокирует вызывающий use case.
func (n *ReportNotifier) NotifyReportUpdated(report *entity.Report) {
	if report == nil {
		return
	}
	data := n.present(report)
	topics := []string{report.ID, AdminTopic}

	goroutine.SafeGo(func() {
		for _, topic := range topics {
			if err := n.hub.Publish(topic, EventReportUpdated, data); err != nil {
				logger.WithFields(logrus.Fields{"report_id": report.ID, "topic": topic, "error": err}).
					Warn("ws: не удалось отправить обновление заявки")
			}
		}
	})
}
