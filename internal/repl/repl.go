package repl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/chzyer/readline"
	"github.com/notexe/localhealth/internal/reminder"
	"github.com/notexe/localhealth/internal/ui"
)

const permissionTimeout = 30 * time.Second

type REPL struct {
	service   *reminder.Service
	rl        *readline.Instance
	out       io.Writer
	formatter *ui.Formatter
}

// New creates a REPL reading from rl. Output goes through rl so alerts
// printed by the scheduler do not garble the prompt.
func New(service *reminder.Service, rl *readline.Instance, formatter *ui.Formatter) *REPL {
	return &REPL{
		service:   service,
		rl:        rl,
		out:       rl.Stdout(),
		formatter: formatter,
	}
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if !isCommand {
			r.displayInfo("Commands start with / (type /help for available commands)")
			continue
		}

		if err := r.handleCommand(ctx, command, args); err != nil {
			r.displayError(err)
		}

		if command == "/quit" || command == "/exit" || command == "/q" {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/add", "/a":
		in, err := parseAddArgs(args)
		if err != nil {
			return err
		}
		added, err := r.service.Add(in)
		if err != nil {
			return err
		}
		r.displaySuccess(fmt.Sprintf("Added reminder #%d: %s at %s.", added.ID, added.MedicineName, added.Time))
		return nil

	case "/list", "/l":
		r.displayBlock(r.formatter.FormatReminders("Upcoming", r.service.Upcoming()))
		return nil

	case "/today", "/t":
		r.displayBlock(r.formatter.FormatReminders("Today", r.service.TodaySchedule()))
		return nil

	case "/all":
		r.displayBlock(r.formatter.FormatReminders("All reminders", r.service.Reminders()))
		return nil

	case "/edit", "/e":
		id, fields, err := parseEditArgs(args)
		if err != nil {
			return err
		}
		updated, ok := r.service.Update(id, fields)
		if !ok {
			return fmt.Errorf("reminder %d not found", id)
		}
		r.displaySuccess("Updated " + r.formatter.FormatReminder(updated))
		return nil

	case "/done", "/d":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if _, ok := r.service.MarkCompleted(id); !ok {
			return fmt.Errorf("reminder %d not found", id)
		}
		r.displaySuccess(fmt.Sprintf("Reminder %d marked as completed.", id))
		return nil

	case "/delete", "/rm":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		r.service.Delete(id)
		r.displaySystem(fmt.Sprintf("Reminder %d deleted.", id))
		return nil

	case "/notifications", "/n":
		r.displayBlock(r.formatter.FormatNotifications(r.service.Notifications()))
		return nil

	case "/dismiss":
		if args == "" {
			return fmt.Errorf("usage: /dismiss <notification id>")
		}
		r.service.ClearNotification(args)
		r.displaySystem("Notification dismissed.")
		return nil

	case "/clear", "/c":
		r.service.ClearAllNotifications()
		r.displaySystem("All notifications dismissed.")
		return nil

	case "/permission", "/p":
		ctx, cancel := context.WithTimeout(ctx, permissionTimeout)
		defer cancel()

		granted, err := r.service.RequestPermission(ctx)
		if err != nil {
			return err
		}
		if granted {
			r.displaySuccess("Notifications enabled.")
		} else {
			r.displayInfo("Notifications were not allowed.")
		}
		return nil

	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func parseID(args string) (int64, error) {
	if args == "" {
		return 0, fmt.Errorf("reminder id is required")
	}
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reminder id %q", args)
	}
	return id, nil
}
