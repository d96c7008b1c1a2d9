package datamanager

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/observability"
)

type instrumented struct {
	backend string
	inner   DataManager
	metrics *observability.Metrics
}

// Instrument wraps m so every operation gets a span and an ops counter sample. metrics may
// be nil.
func Instrument(backend string, m DataManager, metrics *observability.Metrics) DataManager {
	if m == nil {
		return nil
	}
	return &instrumented{backend: backend, inner: m, metrics: metrics}
}

func (i *instrumented) observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := observability.Tracer("datamanager").Start(ctx, "datamanager."+op)
	span.SetAttributes(attribute.String("datamanager.backend", i.backend))
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	i.metrics.IncManagerOp(i.backend, op, err)
	return err
}

func (i *instrumented) GetDecks(ctx context.Context) (out []*domain.Deck, err error) {
	err = i.observe(ctx, "get_decks", func(ctx context.Context) (err error) {
		out, err = i.inner.GetDecks(ctx)
		return err
	})
	return out, err
}

func (i *instrumented) GetGames(ctx context.Context) (out []*domain.Game, err error) {
	err = i.observe(ctx, "get_games", func(ctx context.Context) (err error) {
		out, err = i.inner.GetGames(ctx)
		return err
	})
	return out, err
}

func (i *instrumented) GetDeckByID(ctx context.Context, deckID string) (out *domain.Deck, err error) {
	err = i.observe(ctx, "get_deck", func(ctx context.Context) (err error) {
		out, err = i.inner.GetDeckByID(ctx, deckID)
		return err
	})
	return out, err
}

func (i *instrumented) GetDashboardStats(ctx context.Context) (out *domain.DashboardStats, err error) {
	err = i.observe(ctx, "get_dashboard", func(ctx context.Context) (err error) {
		out, err = i.inner.GetDashboardStats(ctx)
		return err
	})
	return out, err
}

func (i *instrumented) AppendDeck(ctx context.Context, in domain.DeckInput) error {
	return i.observe(ctx, "append_deck", func(ctx context.Context) error { return i.inner.AppendDeck(ctx, in) })
}

func (i *instrumented) UpdateDeck(ctx context.Context, in domain.DeckUpdateInput) error {
	return i.observe(ctx, "update_deck", func(ctx context.Context) error { return i.inner.UpdateDeck(ctx, in) })
}

func (i *instrumented) DeleteDeck(ctx context.Context, deckID, deckName string) (n int, err error) {
	err = i.observe(ctx, "delete_deck", func(ctx context.Context) (err error) {
		n, err = i.inner.DeleteDeck(ctx, deckID, deckName)
		return err
	})
	return n, err
}

func (i *instrumented) AppendGame(ctx context.Context, in domain.GameInput) error {
	return i.observe(ctx, "append_game", func(ctx context.Context) error { return i.inner.AppendGame(ctx, in) })
}

func (i *instrumented) UpdateGame(ctx context.Context, in domain.GameUpdateInput) error {
	return i.observe(ctx, "update_game", func(ctx context.Context) error { return i.inner.UpdateGame(ctx, in) })
}

func (i *instrumented) DeleteGame(ctx context.Context, gameID string) error {
	return i.observe(ctx, "delete_game", func(ctx context.Context) error { return i.inner.DeleteGame(ctx, gameID) })
}
