package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/schedulestore-go/features/command/savecalendar"
	"github.com/AntonStoeckl/schedulestore-go/features/command/saveevent"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

var (
	ErrUnsupportedManifestKind = errors.New("unsupported manifest kind")
	ErrDecodingManifestFailed  = errors.New("decoding the manifest failed")
)

// manifest is one YAML document of an apply file.
type manifest struct {
	Kind     string `yaml:"kind"`
	Metadata struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
	Spec yaml.Node `yaml:"spec"`
}

type calendarManifestSpec struct {
	DisplayName       string `yaml:"displayName"`
	Slug              string `yaml:"slug"`
	ThemeColor        string `yaml:"themeColor"`
	Visible           *bool  `yaml:"visible"`
	ShowCalendarTitle bool   `yaml:"showCalendarTitle"`
}

type eventManifestSpec struct {
	CalendarName       string `yaml:"calendarName"`
	Title              string `yaml:"title"`
	StartAt            string `yaml:"startAt"`
	EndAt              string `yaml:"endAt"`
	AllDay             bool   `yaml:"allDay"`
	Timezone           string `yaml:"timezone"`
	Summary            string `yaml:"summary"`
	Status             string `yaml:"status"`
	ForceHighlight     bool   `yaml:"forceHighlight"`
	ForceHideHighlight bool   `yaml:"forceHideHighlight"`
	RelatedPost        *struct {
		Name      string `yaml:"name"`
		Title     string `yaml:"title"`
		Permalink string `yaml:"permalink"`
		Pinned    bool   `yaml:"pinned"`
	} `yaml:"relatedPost"`
}

func (s calendarManifestSpec) toSpec() schedulestore.CalendarSpec {
	visible := true
	if s.Visible != nil {
		visible = *s.Visible
	}

	return schedulestore.CalendarSpec{
		DisplayName:       s.DisplayName,
		Slug:              s.Slug,
		ThemeColor:        s.ThemeColor,
		Visible:           visible,
		ShowCalendarTitle: s.ShowCalendarTitle,
	}
}

func (s eventManifestSpec) toSpec() schedulestore.EventSpec {
	spec := schedulestore.EventSpec{
		CalendarName:       s.CalendarName,
		Title:              s.Title,
		StartAt:            s.StartAt,
		EndAt:              s.EndAt,
		AllDay:             s.AllDay,
		Timezone:           s.Timezone,
		Summary:            s.Summary,
		Status:             s.Status,
		ForceHighlight:     s.ForceHighlight,
		ForceHideHighlight: s.ForceHideHighlight,
	}

	if s.RelatedPost != nil {
		spec.RelatedPost = &schedulestore.RelatedPost{
			Name:      s.RelatedPost.Name,
			Title:     s.RelatedPost.Title,
			Permalink: s.RelatedPost.Permalink,
			Pinned:    s.RelatedPost.Pinned,
		}
	}

	return spec
}

// decodeManifests reads all YAML documents and orders calendars before events.
func decodeManifests(r io.Reader) ([]savecalendar.Command, []saveevent.Command, error) {
	var calendars []savecalendar.Command
	var events []saveevent.Command

	decoder := yaml.NewDecoder(r)

	for index := 0; ; index++ {
		doc := manifest{}

		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return calendars, events, nil
		}

		if err != nil {
			return nil, nil, errors.Join(ErrDecodingManifestFailed, err)
		}

		switch schedulestore.Kind(doc.Kind) {
		case schedulestore.KindCalendar:
			spec := calendarManifestSpec{}
			if err = doc.Spec.Decode(&spec); err != nil {
				return nil, nil, errors.Join(ErrDecodingManifestFailed, err)
			}

			calendars = append(calendars, savecalendar.BuildCommand(doc.Metadata.Name, spec.toSpec()))

		case schedulestore.KindEvent:
			spec := eventManifestSpec{}
			if err = doc.Spec.Decode(&spec); err != nil {
				return nil, nil, errors.Join(ErrDecodingManifestFailed, err)
			}

			events = append(events, saveevent.BuildCommand(doc.Metadata.Name, spec.toSpec()))

		default:
			return nil, nil, fmt.Errorf("%w: document %d has kind %q", ErrUnsupportedManifestKind, index+1, doc.Kind)
		}
	}
}

func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update calendars and events from a YAML manifest",
		Long: `Create or update calendars and events from a multi-document YAML manifest.

Documents have the form {kind, metadata: {name}, spec}. Kinds are ScheduleCalendar and ScheduleEvent.
Calendars are applied before events. An event without metadata.name is created with a generated name.

Example:
  schedulectl apply -f schedule.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := cmd.InOrStdin()

			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return WrapExitError(ExitCommandError, "opening the manifest failed", err)
				}
				defer f.Close()

				input = f
			}

			calendars, events, err := decodeManifests(input)
			if err != nil {
				return WrapExitError(ExitCommandError, "reading the manifest failed", err)
			}

			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				return applyManifests(ctx, a, calendars, events)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `manifest file, "-" reads stdin`)
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func applyManifests(ctx context.Context, a *app, calendars []savecalendar.Command, events []saveevent.Command) error {
	saveCalendar, err := wrapCommand[savecalendar.Command](a, savecalendar.NewCommandHandler(a.store))
	if err != nil {
		return err
	}

	listener, err := a.eventChangeListener()
	if err != nil {
		return err
	}

	saveEvent, err := wrapCommand[saveevent.Command](a, saveevent.NewCommandHandler(a.store, listener))
	if err != nil {
		return err
	}

	results := make([]shell.HandlerResult, 0, len(calendars)+len(events))

	for _, command := range calendars {
		result, err := saveCalendar.Handle(ctx, command)
		if err != nil {
			return failed(fmt.Sprintf("applying calendar %q failed", command.Name), err)
		}

		results = append(results, result)
	}

	for _, command := range events {
		result, err := saveEvent.Handle(ctx, command)
		if err != nil {
			return failed(fmt.Sprintf("applying event %q failed", command.Spec.Title), err)
		}

		results = append(results, result)
	}

	for _, result := range results {
		if err = a.output().PrintResult("applied", result); err != nil {
			return err
		}
	}

	return nil
}
