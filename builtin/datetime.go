package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/fwojciec/toolchat"
)

// DateTime returns the get_datetime tool.
func DateTime(d Deps) toolchat.Tool {
	d = d.withDefaults()
	return &tool{
		name: "get_datetime",
		description: `Gets the current date and time, or works out facts about a date.
Use it when the user asks what day it is, the current time, how many days remain until a date, or which weekday a date falls on.`,
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"timezone": {Type: "string", Description: "Optional IANA time zone, e.g. 'Europe/Rome'. Defaults to local time."},
			"date":     {Type: "string", Description: "Optional date to describe, in almost any common format, e.g. '2026-12-25' or 'March 3, 2027'."},
		}),
		run: func(_ context.Context, args json.RawMessage) string {
			return runDateTime(d, args)
		},
	}
}

func runDateTime(d Deps, args json.RawMessage) string {
	var a struct {
		Timezone string `json:"timezone"`
		Date     string `json:"date"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}

	loc := time.Local
	if a.Timezone != "" {
		l, err := time.LoadLocation(a.Timezone)
		if err != nil {
			return fail(fmt.Sprintf("unknown timezone %q", a.Timezone), nil)
		}
		loc = l
	}
	now := d.Now().In(loc)

	out := fields{
		"date_iso":     now.Format(time.DateOnly),
		"time_iso":     now.Format(time.TimeOnly),
		"datetime_iso": now.Format(time.RFC3339),
		"day_of_week":  now.Weekday().String(),
		"formatted":    formatLong(now),
		"timestamp":    now.Unix(),
		"timezone":     loc.String(),
	}
	if a.Date == "" {
		return ok(out)
	}

	target, err := dateparse.ParseIn(a.Date, loc)
	if err != nil {
		return fail(fmt.Sprintf("cannot parse date %q: %s", a.Date, err), nil)
	}
	out["date"] = fields{
		"input":       a.Date,
		"date_iso":    target.Format(time.DateOnly),
		"day_of_week": target.Weekday().String(),
		"formatted":   formatLong(target),
		"days_until":  daysBetween(now, target),
	}
	return ok(out)
}

func formatLong(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", t.Weekday(), t.Day(), t.Month(), t.Year())
}

// daysBetween counts calendar days from a to b, negative when b is earlier.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
