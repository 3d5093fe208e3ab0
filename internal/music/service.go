// Package music manages the shared track library and per-session likes.
package music

import (
	"context"
	"time"

	"github.com/starford/infinity/internal/idgen"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
)

// seedTracks is the built-in library present before anyone adds a track.
// AddedAt offsets are relative to process start, mirroring the original
// seed data's staggered timestamps.
func seedTracks(now int64) []models.MusicTrack {
	day := int64(24 * time.Hour / time.Millisecond)
	hour := int64(time.Hour / time.Millisecond)
	return []models.MusicTrack{
		{ID: "track-1", Title: "Cosmic Drift", Artist: "Octave System", Album: "Neural Waves", Source: "octave", Duration: 187, Genre: "Ambient", AddedAt: now - day*7},
		{ID: "track-2", Title: "Mario Overworld Remix", Artist: "MARIO-TOKENS", Album: "Pixel Legends", Source: "mario", Duration: 142, Genre: "Chiptune", AddedAt: now - day*5},
		{ID: "track-3", Title: "Infinity Pulse", Artist: "Spark Engine", Album: "Portal Sessions", Source: "portal", Duration: 234, Genre: "Electronic", AddedAt: now - day*4},
		{ID: "track-4", Title: "Underground Groove", Artist: "Jukebox Core", Album: "Deep Cuts", Source: "jukebox", Duration: 198, Genre: "Hip-Hop", AddedAt: now - day*3},
		{ID: "track-5", Title: "Nebula Rain", Artist: "Octave System", Album: "Neural Waves", Source: "octave", Duration: 213, Genre: "Ambient", AddedAt: now - day*2},
		{ID: "track-6", Title: "Crown Anthem", Artist: "Infinity Crown", Album: "Royal Sessions", Source: "crown", Duration: 167, Genre: "Orchestral", AddedAt: now - day},
		{ID: "track-7", Title: "Token Rush", Artist: "MARIO-TOKENS", Album: "Pixel Legends", Source: "mario", Duration: 156, Genre: "Chiptune", AddedAt: now - hour*12},
		{ID: "track-8", Title: "Quantum Bass", Artist: "Jukebox Core", Album: "Deep Cuts", Source: "jukebox", Duration: 221, Genre: "Electronic", AddedAt: now - hour*6},
	}
}

// Service manages the music library slots.
type Service struct {
	db  *store.DB
	now func() int64
}

// NewService creates a music service.
func NewService(db *store.DB) *Service {
	return &Service{db: db, now: func() int64 { return time.Now().UnixMilli() }}
}

// Library is the track list plus the liked track ids.
type Library struct {
	Tracks []models.MusicTrack `json:"tracks"`
	Liked  []string            `json:"liked"`
}

// Library returns the full library, materializing the seed list the first
// time it is read.
func (s *Service) Library(_ context.Context) (*Library, error) {
	out := &Library{}
	err := s.db.Apply(func(tx *store.Txn) error {
		tracks, err := store.Load[[]models.MusicTrack](tx, store.SlotMusicTracks, nil)
		if err != nil {
			return err
		}
		if tracks == nil {
			tracks = seedTracks(s.now())
			if err := store.Save(tx, store.SlotMusicTracks, tracks); err != nil {
				return err
			}
		}
		liked, err := store.Load(tx, store.SlotLikedTracks, []string{})
		if err != nil {
			return err
		}
		out.Tracks = tracks
		out.Liked = liked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddTrack appends a track to the library and returns it with its id and
// timestamp filled in.
func (s *Service) AddTrack(ctx context.Context, t models.MusicTrack) (*models.MusicTrack, error) {
	t.ID = idgen.TrackID()
	t.AddedAt = s.now()
	err := s.db.Apply(func(tx *store.Txn) error {
		tracks, err := store.Load[[]models.MusicTrack](tx, store.SlotMusicTracks, nil)
		if err != nil {
			return err
		}
		if tracks == nil {
			tracks = seedTracks(s.now())
		}
		return store.Save(tx, store.SlotMusicTracks, append(tracks, t))
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Like records a liked track id. Liking twice is a no-op.
func (s *Service) Like(_ context.Context, trackID string) error {
	return s.db.Apply(func(tx *store.Txn) error {
		liked, err := store.Load(tx, store.SlotLikedTracks, []string{})
		if err != nil {
			return err
		}
		for _, id := range liked {
			if id == trackID {
				return nil
			}
		}
		return store.Save(tx, store.SlotLikedTracks, append(liked, trackID))
	})
}

// Unlike removes a track id from the liked list.
func (s *Service) Unlike(_ context.Context, trackID string) error {
	return s.db.Apply(func(tx *store.Txn) error {
		liked, err := store.Load(tx, store.SlotLikedTracks, []string{})
		if err != nil {
			return err
		}
		next := liked[:0]
		for _, id := range liked {
			if id != trackID {
				next = append(next, id)
			}
		}
		return store.Save(tx, store.SlotLikedTracks, next)
	})
}
