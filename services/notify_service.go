// services/notify_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"carwash-backend/models"
	"carwash-backend/store"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// NotifyService sends "your turn" SMS messages and runs the nightly
// retention purge of finished tickets.
type NotifyService struct {
	store  store.Store
	client *twilio.RestClient
	from   string
}

func NewNotifyService(st store.Store) *NotifyService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	svc := &NotifyService{
		store: st,
		from:  os.Getenv("TWILIO_PHONE_NUMBER"),
	}
	if accountSid != "" && authToken != "" {
		svc.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})
	}
	return svc
}

// TicketStarted tells the customer their vehicle just entered a bay.
// No phone or no Twilio configuration means no message; a send failure
// is logged and never fails the transition that triggered it.
func (s *NotifyService) TicketStarted(ticket models.Ticket) {
	if s.client == nil || ticket.Phone == "" {
		return
	}

	bay := "the service bay"
	if ticket.ServiceBay != nil && *ticket.ServiceBay != "" {
		bay = *ticket.ServiceBay
	}
	message := fmt.Sprintf("Token #%d: your vehicle %s is now being serviced at %s.",
		ticket.Number, ticket.VehicleNumber, bay)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(ticket.Phone)
	params.SetFrom(s.from)
	params.SetBody(message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send SMS for ticket %s: %v", ticket.ID, err)
		return
	}
	if resp.Sid != nil {
		log.Printf("SMS sent for ticket %s, SID: %s", ticket.ID, *resp.Sid)
	}
}

// StartRetentionScheduler purges COMPLETED/CANCELLED tickets older than
// TICKET_RETENTION_DAYS (default 30) every night at 03:00.
func (s *NotifyService) StartRetentionScheduler() {
	retentionDays := 30
	if env := os.Getenv("TICKET_RETENTION_DAYS"); env != "" {
		if d, err := strconv.Atoi(env); err == nil && d > 0 {
			retentionDays = d
		}
	}

	c := cron.New()
	c.AddFunc("0 3 * * *", func() {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		purged, err := s.store.DeleteFinishedBefore(context.Background(), cutoff)
		if err != nil {
			log.Printf("Ticket retention purge failed: %v", err)
			return
		}
		log.Printf("Ticket retention purge removed %d tickets older than %s",
			purged, cutoff.Format("2006-01-02"))
	})
	c.Start()

	log.Println("Retention scheduler started")
}
