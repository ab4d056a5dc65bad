package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/hoodmarket/ticket-bot/internal/domain"
	"github.com/hoodmarket/ticket-bot/internal/platform"
)

const transcriptRule = "=================================================="

// BuildTranscript renders a chronological plain-text transcript of a closed
// ticket: a metadata header followed by one line per message.
func BuildTranscript(ticket *domain.Ticket, history []domain.MessageRecord) string {
	var b strings.Builder

	closedBy := systemClosedBy
	if ticket.ClosedBy != nil {
		closedBy = *ticket.ClosedBy
	}

	fmt.Fprintf(&b, "TICKET TRANSCRIPT #%d\n", ticket.Number)
	b.WriteString(transcriptRule + "\n\n")
	fmt.Fprintf(&b, "Service: %s\n", ticket.Description)
	fmt.Fprintf(&b, "Category: %s\n", ticket.Category.Label())
	fmt.Fprintf(&b, "Client: %s (%s)\n", ticket.RequesterName, ticket.RequesterID)
	fmt.Fprintf(&b, "Opened: %s\n", ticket.CreatedAt.Format(time.RFC1123))
	if ticket.ClosedAt != nil {
		fmt.Fprintf(&b, "Closed: %s\n", ticket.ClosedAt.Format(time.RFC1123))
	}
	fmt.Fprintf(&b, "Closed By: %s\n", closedBy)
	fmt.Fprintf(&b, "Duration: %d minutes\n\n", durationMinutes(ticket))
	b.WriteString(transcriptRule + "\n\n")

	for _, msg := range history {
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Author, msg.Body)
		if len(msg.Attachments) > 0 {
			fmt.Fprintf(&b, "Attachments: %s\n", strings.Join(msg.Attachments, ", "))
		}
	}

	return b.String()
}

// durationMinutes is the open-to-close interval in whole minutes.
func durationMinutes(ticket *domain.Ticket) int64 {
	return int64(ticket.Duration().Minutes())
}

func transcriptFields(ticket *domain.Ticket, closedBy string) []platform.NoticeField {
	fields := []platform.NoticeField{
		{Name: "Opened", Value: ticket.CreatedAt.Format(time.RFC1123), Inline: true},
	}
	if ticket.ClosedAt != nil {
		fields = append(fields, platform.NoticeField{
			Name: "Closed", Value: ticket.ClosedAt.Format(time.RFC1123), Inline: true,
		})
	}
	fields = append(fields, platform.NoticeField{Name: "Closed By", Value: closedBy, Inline: true})
	return fields
}
