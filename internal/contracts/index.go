package contracts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultIndexCode is served by the index endpoint without a path segment
const DefaultIndexCode = "SP500"

var indexCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,16}$`)

// NormalizeIndexCode upper-cases and validates an index code
func NormalizeIndexCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return DefaultIndexCode, nil
	}
	if !indexCodePattern.MatchString(code) {
		return "", fmt.Errorf("%w: index code %q", ErrInvalidInput, s)
	}
	return code, nil
}

// IndexSnapshot is a dated row naming the members of an index at a point in time
type IndexSnapshot struct {
	ID           int64     `json:"id"`
	IndexCode    string    `json:"index"`
	SnapshotDate time.Time `json:"snapshotDate"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IndexMember is one constituent of a snapshot
type IndexMember struct {
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"companyName"`
	Sector      string  `json:"sector"`
	Weight      float64 `json:"weight"`
}

// IndexMembership is the API payload for the latest snapshot of an index
type IndexMembership struct {
	Index        string        `json:"index"`
	SnapshotID   int64         `json:"snapshotId"`
	SnapshotDate time.Time     `json:"snapshotDate"`
	Count        int           `json:"count"`
	Members      []IndexMember `json:"members"`
}

// NewIndexMembership sorts members by weight desc then ticker
func NewIndexMembership(snapshot *IndexSnapshot, members []IndexMember) *IndexMembership {
	if members == nil {
		members = []IndexMember{}
	}
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Weight != members[j].Weight {
			return members[i].Weight > members[j].Weight
		}
		return members[i].Ticker < members[j].Ticker
	})
	return &IndexMembership{
		Index:        snapshot.IndexCode,
		SnapshotID:   snapshot.ID,
		SnapshotDate: snapshot.SnapshotDate,
		Count:        len(members),
		Members:      members,
	}
}

// Contains checks if a ticker is in the membership
func (m *IndexMembership) Contains(ticker string) bool {
	for _, member := range m.Members {
		if member.Ticker == ticker {
			return true
		}
	}
	return false
}
