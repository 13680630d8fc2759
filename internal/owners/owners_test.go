package owners_test

import (
	"context"
	"errors"
	"testing"

	"dubline/internal/owners"
	"dubline/internal/testsupport"
)

type stubOwner struct {
	ref     owners.Ref
	gender  string
	profile any
}

func (s *stubOwner) Ref() owners.Ref     { return s.ref }
func (s *stubOwner) Title() string       { return "stub" }
func (s *stubOwner) SpeakerProfile() any { return s.profile }

func (s *stubOwner) SpeakerGenderHint() string { return s.gender }

type stubProfile struct {
	gender string
}

func (p *stubProfile) SpeakerGenderHint() string { return p.gender }

type stubResolver struct {
	owner owners.Owner
	err   error
}

func (r *stubResolver) Resolve(_ context.Context, _ int64) (owners.Owner, error) {
	return r.owner, r.err
}

func TestSpeakerGenderHintDirect(t *testing.T) {
	reg := owners.NewRegistry()
	reg.Register("stub", &stubResolver{owner: &stubOwner{gender: "F"}})

	hint := reg.SpeakerGenderHint(context.Background(), owners.Ref{Kind: "stub", ID: 1})
	if hint != "female" {
		t.Fatalf("expected normalized female, got %q", hint)
	}
}

func TestSpeakerGenderHintViaProfile(t *testing.T) {
	reg := owners.NewRegistry()
	reg.Register("stub", &stubResolver{owner: &stubOwner{profile: &stubProfile{gender: "Male"}}})

	hint := reg.SpeakerGenderHint(context.Background(), owners.Ref{Kind: "stub", ID: 1})
	if hint != "male" {
		t.Fatalf("expected male via profile, got %q", hint)
	}
}

func TestSpeakerGenderHintNeverFails(t *testing.T) {
	reg := owners.NewRegistry()
	reg.Register("broken", &stubResolver{err: errors.New("backend down")})
	reg.Register("odd", &stubResolver{owner: &stubOwner{gender: "unspecified"}})

	ctx := context.Background()
	if hint := reg.SpeakerGenderHint(ctx, owners.Ref{Kind: "broken", ID: 1}); hint != "" {
		t.Fatalf("expected empty hint on resolver error, got %q", hint)
	}
	if hint := reg.SpeakerGenderHint(ctx, owners.Ref{Kind: "missing", ID: 1}); hint != "" {
		t.Fatalf("expected empty hint for unknown kind, got %q", hint)
	}
	if hint := reg.SpeakerGenderHint(ctx, owners.Ref{Kind: "odd", ID: 1}); hint != "" {
		t.Fatalf("expected empty hint for unrecognized value, got %q", hint)
	}
}

func TestMediaResolverRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := st.EnsureMediaItem(ctx, "Pilot", "/media/pilot.mkv", "female")
	if err != nil {
		t.Fatalf("EnsureMediaItem failed: %v", err)
	}

	reg := owners.DefaultRegistry(st)
	ref := owners.Ref{Kind: owners.KindMedia, ID: item.ID}

	owner, err := reg.Resolve(ctx, ref)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if owner.Title() != "Pilot" {
		t.Fatalf("unexpected title %q", owner.Title())
	}
	if hint := reg.SpeakerGenderHint(ctx, ref); hint != "female" {
		t.Fatalf("expected female hint, got %q", hint)
	}
}
