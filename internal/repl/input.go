package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/notexe/localhealth/internal/reminder"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (r *REPL) parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

// parseAddArgs reads "name | dosage | HH:MM [| frequency | days | notes]".
func parseAddArgs(args string) (reminder.Input, error) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return reminder.Input{}, fmt.Errorf("usage: /add name | dosage | HH:MM [| frequency | days | notes]")
	}

	in := reminder.Input{
		MedicineName: parts[0],
		Dosage:       parts[1],
		Time:         parts[2],
	}
	if len(parts) > 3 {
		in.Frequency = parts[3]
	}
	if len(parts) > 4 {
		in.Days = splitDays(parts[4])
	}
	if len(parts) > 5 {
		in.Notes = strings.Join(parts[5:], " | ")
	}
	return in, nil
}

var editableFields = map[string]bool{
	"medicine":  true,
	"name":      true,
	"dosage":    true,
	"time":      true,
	"frequency": true,
	"days":      true,
	"notes":     true,
}

// parseEditArgs reads "<id> field=value ...". Values may contain spaces;
// a value runs until the next known field name.
func parseEditArgs(args string) (int64, reminder.UpdateFields, error) {
	var fields reminder.UpdateFields

	idStr, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := parseID(idStr)
	if err != nil {
		return 0, fields, err
	}

	values := map[string]string{}
	var current string
	for _, tok := range strings.Fields(rest) {
		if k, v, ok := strings.Cut(tok, "="); ok && editableFields[strings.ToLower(k)] {
			current = strings.ToLower(k)
			values[current] = v
			continue
		}
		if current == "" {
			return 0, fields, fmt.Errorf("expected field=value, got %q", tok)
		}
		values[current] += " " + tok
	}
	if len(values) == 0 {
		return 0, fields, fmt.Errorf("usage: /edit <id> field=value ... (fields: medicine, dosage, time, frequency, days, notes)")
	}

	for k, v := range values {
		v := strings.TrimSpace(v)
		switch k {
		case "medicine", "name":
			if v == "" {
				return 0, fields, &reminder.ValidationError{Field: "medicineName"}
			}
			fields.MedicineName = &v
		case "dosage":
			if v == "" {
				return 0, fields, &reminder.ValidationError{Field: "dosage"}
			}
			fields.Dosage = &v
		case "time":
			if _, err := reminder.ParseTimeOfDay(v); err != nil {
				return 0, fields, err
			}
			fields.Time = &v
		case "frequency":
			v = strings.ToLower(v)
			if !reminder.ValidFrequency(v) {
				return 0, fields, fmt.Errorf("unknown frequency %q", v)
			}
			fields.Frequency = &v
		case "days":
			days, err := reminder.NormalizeDays(splitDays(v))
			if err != nil {
				return 0, fields, err
			}
			fields.Days = days
		case "notes":
			fields.Notes = &v
		}
	}

	return id, fields, nil
}

func splitDays(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

// NewReadline creates the line reader used by the REPL.
func NewReadline(prompt string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              prompt,
		HistoryFile:         "",
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	return rl, err
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
