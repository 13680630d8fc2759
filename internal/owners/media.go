package owners

import (
	"context"
	"fmt"

	"dubline/internal/store"
)

// KindMedia is the built-in owner kind for directly registered media files.
const KindMedia = "media"

// MediaOwner adapts a store media item to the Owner interface.
type MediaOwner struct {
	item *store.MediaItem
}

func (m *MediaOwner) Ref() Ref {
	return Ref{Kind: KindMedia, ID: m.item.ID}
}

func (m *MediaOwner) Title() string {
	return m.item.Title
}

func (m *MediaOwner) SpeakerGenderHint() string {
	return m.item.SpeakerGender
}

// SourcePath returns the registered media file path.
func (m *MediaOwner) SourcePath() string {
	return m.item.SourcePath
}

// MediaResolver loads media owners from the artifact store.
type MediaResolver struct {
	store *store.Store
}

// NewMediaResolver returns a resolver backed by the given store.
func NewMediaResolver(st *store.Store) *MediaResolver {
	return &MediaResolver{store: st}
}

func (r *MediaResolver) Resolve(ctx context.Context, id int64) (Owner, error) {
	item, err := r.store.GetMediaItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("media item %d not found", id)
	}
	return &MediaOwner{item: item}, nil
}

// DefaultRegistry returns a registry with the built-in media kind installed.
func DefaultRegistry(st *store.Store) *Registry {
	reg := NewRegistry()
	reg.Register(KindMedia, NewMediaResolver(st))
	return reg
}
