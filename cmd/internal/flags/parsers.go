package flags

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"go.senan.xyz/centrifuge/hook"
	"go.senan.xyz/centrifuge/notifications"
	"go.senan.xyz/centrifuge/release"
	"go.senan.xyz/centrifuge/validator"
)

var _ flag.Value = (*kindParser)(nil)
var _ flag.Value = (*hookParser)(nil)
var _ flag.Value = (*notificationsParser)(nil)
var _ flag.Value = (*expungeParser)(nil)

type kindParser struct{ *release.Kind }

func (k *kindParser) Set(value string) error {
	kind := release.Kind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.IsValid() {
		return fmt.Errorf("unknown violation kind %q, want one of %s", value, release.KindsString())
	}
	*k.Kind = kind
	return nil
}
func (k kindParser) String() string {
	if k.Kind == nil {
		return ""
	}
	return string(*k.Kind)
}

type hookParser struct{ *hook.Hook }

func (h *hookParser) Set(value string) error {
	parsed, err := hook.New(value)
	if err != nil {
		return err
	}
	*h.Hook = parsed
	return nil
}
func (h hookParser) String() string {
	if h.Hook == nil || h.Hook.IsZero() {
		return ""
	}
	return h.Hook.String()
}

type notificationsParser struct{ *notifications.Notifications }

func (n notificationsParser) Set(value string) error {
	eventsRaw, uri, ok := strings.Cut(value, " ")
	if !ok {
		return fmt.Errorf("invalid notification uri format. expected eg \"ev1,ev2 uri\"")
	}
	var lineErrs []error
	for _, ev := range strings.Split(eventsRaw, ",") {
		ev, uri = strings.TrimSpace(ev), strings.TrimSpace(uri)
		err := n.AddURI(notifications.Event(ev), uri)
		lineErrs = append(lineErrs, err)
	}
	return errors.Join(lineErrs...)
}
func (n notificationsParser) String() string {
	if n.Notifications == nil {
		return ""
	}
	var parts []string
	n.IterMappings(func(e notifications.Event, uri string) {
		url, _ := url.Parse(uri)
		parts = append(parts, fmt.Sprintf("%s: %s://%s/...", e, url.Scheme, url.Host))
	})
	return strings.Join(parts, ", ")
}

type expungeParser struct{ *validator.Validator }

func (e expungeParser) Set(value string) error {
	e.AddForbiddenCommentSubstring(value)
	return nil
}
func (e expungeParser) String() string { return "" }
