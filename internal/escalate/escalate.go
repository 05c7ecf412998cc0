// Package escalate flags grievances that blew their SLA deadline. A
// cron-scheduled sweep walks pending grievances, computes their SLA
// status and posts one notification per newly overdue item.
package escalate

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"

	"grievancedesk/internal/domain"
	"grievancedesk/internal/registry"
	"grievancedesk/internal/sla"
	"grievancedesk/internal/storage/sqlite"
)

// Notifier delivers one overdue alert. Implementations must be safe to
// call from the sweep goroutine.
type Notifier interface {
	NotifyOverdue(g domain.Grievance, st sla.Status) error
}

// SlackNotifier posts overdue alerts to a fixed channel.
type SlackNotifier struct {
	api       *slack.Client
	channelID string
}

func NewSlackNotifier(api *slack.Client, channelID string) *SlackNotifier {
	return &SlackNotifier{api: api, channelID: channelID}
}

func (n *SlackNotifier) NotifyOverdue(g domain.Grievance, st sla.Status) error {
	deptName := g.DepartmentID
	if d, ok := registry.ByID(g.DepartmentID); ok {
		deptName = d.Name
	}
	msg := fmt.Sprintf(
		":rotating_light: Grievance #%d is overdue by %s\nDepartment: %s\nRaised: %s (deadline %s)\n> %s",
		g.ID,
		sla.FormatDuration(-st.Remaining),
		deptName,
		g.CreatedAt.Format("Mon Jan 2 15:04"),
		st.Deadline.Format("Mon Jan 2 15:04"),
		truncate(g.Text, 200),
	)
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(msg, false))
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// SweepOnce notifies and marks every pending grievance whose deadline
// has passed. Returns how many escalations went out. Notification
// failures leave the grievance unmarked so the next sweep retries it.
func SweepOnce(store *sqlite.Store, notifier Notifier, now time.Time) (int, error) {
	pending, err := store.ListPendingUnescalated()
	if err != nil {
		return 0, fmt.Errorf("listing pending grievances: %w", err)
	}

	escalated := 0
	for _, g := range pending {
		st := sla.ComputeFor(g, now)
		if !st.Overdue {
			continue
		}
		if err := notifier.NotifyOverdue(g, st); err != nil {
			log.Printf("escalate notify failed grievance=%d err=%v", g.ID, err)
			continue
		}
		if err := store.MarkEscalated(g.Owner, g.ID); err != nil {
			log.Printf("escalate mark failed grievance=%d err=%v", g.ID, err)
			continue
		}
		escalated++
	}
	return escalated, nil
}

// StartScheduler runs SweepOnce on a 5-field cron schedule (minute hour
// day-of-month month day-of-week). Examples: "*/15 * * * *" (every 15
// minutes), "0 9 * * 1-5" (weekdays 9am). An empty schedule disables
// the sweep.
func StartScheduler(schedule string, loc *time.Location, store *sqlite.Store, notifier Notifier) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Escalation sweep disabled (escalation_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid escalation_schedule '%s': %v, escalation sweep disabled", schedule, err)
		return
	}
	if loc == nil {
		loc = time.Local
	}

	log.Printf("Escalation sweep scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next escalation sweep at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			count, err := SweepOnce(store, notifier, time.Now())
			if err != nil {
				log.Printf("Escalation sweep error: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("Escalation sweep sent %d overdue notifications", count)
			}
		}
	}()
}
