package widget

import (
	"context"
	"fmt"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// StaticMediaWidget renders an attachment whose location is a text rendered from data.
type StaticMediaWidget struct {
	mediaType domain.MediaType
	url       Text
	path      Text
	when      Predicate
}

// StaticMedia creates a media widget pointing at url.
func StaticMedia(mediaType domain.MediaType, url Text) *StaticMediaWidget {
	return &StaticMediaWidget{mediaType: mediaType, url: url}
}

// StaticFile creates a media widget pointing at a local path.
func StaticFile(mediaType domain.MediaType, path Text) *StaticMediaWidget {
	return &StaticMediaWidget{mediaType: mediaType, path: path}
}

// When returns a copy shown only when p holds.
func (w *StaticMediaWidget) When(p Predicate) *StaticMediaWidget {
	c := *w
	c.when = p
	return &c
}

func (w *StaticMediaWidget) IsVisible(data Data, m Manager) (bool, error) {
	return visible(w.when, data, w, m)
}

func (w *StaticMediaWidget) RenderMedia(ctx context.Context, data Data, m Manager) (*domain.Media, error) {
	if ok, err := w.IsVisible(data, m); err != nil || !ok {
		return nil, err
	}
	media := &domain.Media{Type: w.mediaType}
	var err error
	if w.url != nil {
		if media.URL, err = w.url.RenderText(ctx, data, m); err != nil {
			return nil, err
		}
	}
	if w.path != nil {
		if media.Path, err = w.path.RenderText(ctx, data, m); err != nil {
			return nil, err
		}
	}
	return media, nil
}

// DynamicMediaWidget passes through a descriptor produced by the getter.
type DynamicMediaWidget struct {
	key  string
	when Predicate
}

// DynamicMedia reads a domain.Media (or *domain.Media) from data[key]. A missing key renders no media.
func DynamicMedia(key string) *DynamicMediaWidget {
	return &DynamicMediaWidget{key: key}
}

// When returns a copy shown only when p holds.
func (w *DynamicMediaWidget) When(p Predicate) *DynamicMediaWidget {
	c := *w
	c.when = p
	return &c
}

func (w *DynamicMediaWidget) IsVisible(data Data, m Manager) (bool, error) {
	return visible(w.when, data, w, m)
}

func (w *DynamicMediaWidget) RenderMedia(ctx context.Context, data Data, m Manager) (*domain.Media, error) {
	if ok, err := w.IsVisible(data, m); err != nil || !ok {
		return nil, err
	}
	switch v := data[w.key].(type) {
	case nil:
		return nil, nil
	case *domain.Media:
		return v, nil
	case domain.Media:
		return &v, nil
	default:
		return nil, &RenderError{Widget: "DynamicMedia", Err: fmt.Errorf("data[%q] is %T, not a media", w.key, v)}
	}
}
