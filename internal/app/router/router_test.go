package router

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fleetsync/internal/app/cache"
	"fleetsync/internal/app/errors"
	"fleetsync/internal/app/protocol"
	"fleetsync/internal/config/logger"
)

func envelope(t protocol.EventType, data string) protocol.Envelope {
	env := protocol.Envelope{Type: t}
	if data != "" {
		env.Data = json.RawMessage(data)
	}

	return env
}

func Test_Keys(t *testing.T) {
	tests := []struct {
		name string
		env  protocol.Envelope
		keys []cache.Key
		all  bool
	}{
		{
			name: "Trip created with program",
			env:  envelope(protocol.TripCreated, `{"programId":"p1"}`),
			keys: []cache.Key{
				cache.Collection(cache.DomainTrips),
				cache.Scoped(cache.DomainTrips, cache.ScopeProgram, "p1"),
			},
		},
		{
			name: "Trip update with both hints",
			env:  envelope(protocol.TripUpdate, `{"id":"t1","programId":"p1","corporateClientId":"c1"}`),
			keys: []cache.Key{
				cache.Collection(cache.DomainTrips),
				cache.Scoped(cache.DomainTrips, cache.ScopeProgram, "p1"),
				cache.Scoped(cache.DomainTrips, cache.ScopeCorporateClient, "c1"),
			},
		},
		{
			name: "Driver update with corporate client",
			env:  envelope(protocol.DriverUpdate, `{"corporateClientId":"c1"}`),
			keys: []cache.Key{
				cache.Collection(cache.DomainDrivers),
				cache.Scoped(cache.DomainDrivers, cache.ScopeCorporateClient, "c1"),
			},
		},
		{
			name: "Client update without hints",
			env:  envelope(protocol.ClientUpdate, `{"id":"cl1"}`),
			keys: []cache.Key{cache.Collection(cache.DomainClients)},
		},
		{
			name: "Trip created with numeric corporate client",
			env:  envelope(protocol.TripCreated, `{"programId":"p1","corporateClientId":7}`),
			keys: []cache.Key{
				cache.Collection(cache.DomainTrips),
				cache.Scoped(cache.DomainTrips, cache.ScopeProgram, "p1"),
				cache.Scoped(cache.DomainTrips, cache.ScopeCorporateClient, "7"),
			},
		},
		{
			name: "Trip update with numeric program",
			env:  envelope(protocol.TripUpdate, `{"programId":42}`),
			keys: []cache.Key{
				cache.Collection(cache.DomainTrips),
				cache.Scoped(cache.DomainTrips, cache.ScopeProgram, "42"),
			},
		},
		{
			name: "Trip update with unusable corporate client",
			env:  envelope(protocol.TripUpdate, `{"programId":"p1","corporateClientId":["c1"]}`),
			keys: []cache.Key{
				cache.Collection(cache.DomainTrips),
				cache.Scoped(cache.DomainTrips, cache.ScopeProgram, "p1"),
			},
		},
		{
			name: "Non-object data",
			env:  envelope(protocol.DriverUpdate, `["p1"]`),
			keys: []cache.Key{cache.Collection(cache.DomainDrivers)},
		},
		{
			name: "System update",
			env:  envelope(protocol.SystemUpdate, ""),
			all:  true,
		},
		{
			name: "Connection notice",
			env:  envelope(protocol.Connection, `{"message":"welcome"}`),
		},
		{
			name: "Unknown type",
			env:  envelope("invoice_paid", `{"programId":"p1"}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Keys(tt.env)

			assert.Equal(t, tt.env.Type, plan.Type)
			assert.Equal(t, tt.keys, plan.Keys)
			assert.Equal(t, tt.all, plan.All)
			assert.Equal(t, !tt.all && len(tt.keys) == 0, plan.IsEmpty())
		})
	}
}

func Test_Route(t *testing.T) {
	tests := []struct {
		name   string
		env    protocol.Envelope
		before func(m *cache.MockInvalidator)
		error  error
	}{
		{
			name: "Trip created invalidates trips and program scope only",
			env:  envelope(protocol.TripCreated, `{"programId":"p1"}`),
			before: func(m *cache.MockInvalidator) {
				m.EXPECT().Invalidate(gomock.Any(),
					cache.Collection(cache.DomainTrips),
					cache.Scoped(cache.DomainTrips, cache.ScopeProgram, "p1"),
				).Return(nil).Times(1)
			},
		},
		{
			name: "System update invalidates everything",
			env:  envelope(protocol.SystemUpdate, ""),
			before: func(m *cache.MockInvalidator) {
				m.EXPECT().InvalidateAll(gomock.Any()).Return(nil).Times(1)
			},
		},
		{
			name:   "Unknown type touches nothing",
			env:    envelope("invoice_paid", ""),
			before: func(m *cache.MockInvalidator) {},
		},
		{
			name: "Invalidation failure is returned",
			env:  envelope(protocol.ClientUpdate, ""),
			before: func(m *cache.MockInvalidator) {
				m.EXPECT().Invalidate(gomock.Any(), cache.Collection(cache.DomainClients)).Return(errors.ErrFailedToInvalidate)
			},
			error: errors.ErrFailedToInvalidate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			target := cache.NewMockInvalidator(ctrl)
			tt.before(target)

			r := NewRouter(target, logger.Nop())

			_, err := r.Route(context.Background(), tt.env)
			if tt.error != nil {
				assert.ErrorIs(t, err, tt.error)
				return
			}

			require.NoError(t, err)
		})
	}
}

func Test_Callbacks_LogsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := cache.NewMockInvalidator(ctrl)
	log := logger.NewMockLogger(ctrl)

	log.EXPECT().WithComponent("ROUTER").Return(log)
	log.EXPECT().Debug().Return(nil)
	log.EXPECT().Error().Return(nil)

	target.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(errors.ErrFailedToInvalidate)

	cb := NewRouter(target, log).Callbacks(context.Background())

	assert.NotPanics(t, func() {
		cb.OnMessage(envelope(protocol.DriverUpdate, ""))
	})
	assert.Nil(t, cb.OnConnect)
}
