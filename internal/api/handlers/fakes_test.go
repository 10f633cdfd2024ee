package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/internal/digest"
)

var signalDate = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

type fakeRecs struct {
	lists map[contracts.Period]*contracts.RecommendationList
	err   error
}

func (f *fakeRecs) LatestDate(context.Context, contracts.Period) (time.Time, error) {
	return time.Time{}, errors.New("not used")
}

func (f *fakeRecs) ListByDate(context.Context, contracts.Period, time.Time) ([]contracts.Recommendation, error) {
	return nil, errors.New("not used")
}

func (f *fakeRecs) Latest(_ context.Context, period contracts.Period) (*contracts.RecommendationList, error) {
	if f.err != nil {
		return nil, f.err
	}
	list, ok := f.lists[period]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return list, nil
}

func (f *fakeRecs) LatestForTicker(context.Context, string) (*contracts.Recommendation, error) {
	return nil, contracts.ErrNotFound
}

type fakeIndexes struct {
	snapshots map[string]*contracts.IndexSnapshot
	members   map[int64][]contracts.IndexMember
}

func (f *fakeIndexes) LatestSnapshot(_ context.Context, code string) (*contracts.IndexSnapshot, error) {
	s, ok := f.snapshots[code]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return s, nil
}

func (f *fakeIndexes) Members(_ context.Context, id int64) ([]contracts.IndexMember, error) {
	return f.members[id], nil
}

type fakePrices struct {
	prices map[string]*contracts.Price
}

func (f *fakePrices) Latest(_ context.Context, ticker string) (*contracts.Price, error) {
	p, ok := f.prices[ticker]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return p, nil
}

type fakePerformance struct {
	payload *contracts.PerformancePayload
}

func (f *fakePerformance) Latest(context.Context) (*contracts.PerformancePayload, error) {
	if f.payload == nil {
		return nil, contracts.ErrNotFound
	}
	return f.payload, nil
}

type fakeNewsletter struct {
	seen       map[string]bool
	lastEmail  string
	lastSource string
	err        error
}

func (f *fakeNewsletter) Subscribe(_ context.Context, email, source string) (*contracts.SubscribeResult, error) {
	f.lastEmail, f.lastSource = email, source
	if f.err != nil {
		return nil, f.err
	}
	email = contracts.NormalizeEmail(email)
	created := !f.seen[email]
	f.seen[email] = true
	return &contracts.SubscribeResult{
		Subscriber: &contracts.Subscriber{Email: email, Source: source},
		Created:    created,
	}, nil
}

func (f *fakeNewsletter) Unsubscribe(_ context.Context, email string) (bool, error) {
	return f.seen[contracts.NormalizeEmail(email)], f.err
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, error) { return true, nil }

type fakeRunner struct {
	calls  int
	result *digest.Result
	err    error
}

func (f *fakeRunner) Run(context.Context, string) (*digest.Result, error) {
	f.calls++
	return f.result, f.err
}
