// Package listing buckets job postings into the canonical tiers and collapses
// each company's postings in a tier into one representative.
package listing

import (
	"cmp"
	"slices"
	"strconv"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/group"
	"jobboard-engine/internal/tier"
)

// UnknownCompany groups postings that carry no company name.
const UnknownCompany = "Unknown Company"

// Representative is the posting shown for a company within a tier.
type Representative struct {
	domain.Job
	CompanyJobCount int          `json:"companyJobCount"`
	AllCompanyJobs  []domain.Job `json:"allCompanyJobs"`
}

// Buckets maps every canonical tier to its representatives.
type Buckets map[tier.Tier][]Representative

// Counts returns the number of representatives per tier.
func (b Buckets) Counts() map[tier.Tier]int {
	out := make(map[tier.Tier]int, len(tier.All))
	for _, t := range tier.All {
		out[t] = len(b[t])
	}
	return out
}

// Partitioned holds the raw (not yet deduplicated) tier buckets.
type Partitioned struct {
	Raw     map[tier.Tier][]domain.Job
	Dropped []domain.Job // matched no bucket at all
}

// Partition places each job in the bucket of its normalized tier and, based
// on Source, possibly in latest or newspaper as well. A job can therefore sit
// in two buckets. The latest bucket comes back sorted by PublishedDate,
// newest first.
func Partition(jobs []domain.Job) Partitioned {
	p := Partitioned{Raw: make(map[tier.Tier][]domain.Job, len(tier.All))}
	seen := make(map[tier.Tier]map[string]struct{}, len(tier.All))
	for _, t := range tier.All {
		p.Raw[t] = []domain.Job{}
		seen[t] = map[string]struct{}{}
	}

	add := func(t tier.Tier, id string, j domain.Job) {
		if _, dup := seen[t][id]; dup {
			return
		}
		seen[t][id] = struct{}{}
		p.Raw[t] = append(p.Raw[t], j)
	}

	for i, j := range jobs {
		id := membershipID(i, j)
		t, ok := tier.Normalize(j.Tier)
		if ok {
			add(t, id, j)
		}
		switch j.Source {
		case domain.SourceOnline:
			if !t.Paid() {
				add(tier.Latest, id, j)
			}
		case domain.SourceNewspaper:
			add(tier.Newspaper, id, j)
		default:
			if !ok {
				p.Dropped = append(p.Dropped, j)
			}
		}
	}

	slices.SortStableFunc(p.Raw[tier.Latest], func(a, b domain.Job) int {
		return cmp.Compare(b.PublishedDate, a.PublishedDate)
	})
	return p
}

// membershipID identifies a job for the per-bucket duplicate guard. Jobs
// without an ID are told apart by position.
func membershipID(i int, j domain.Job) string {
	if j.ID != "" {
		return "id:" + j.ID
	}
	return "pos:" + strconv.Itoa(i)
}

// CompanyKey is the grouping key for representatives. The name is used as is.
func CompanyKey(j domain.Job) string {
	if j.Company == "" {
		return UnknownCompany
	}
	return j.Company
}

// Better orders postings of the same company: featured first, then the more
// recent PostedDate/PublishedDate, then the higher literal tier priority, then
// the smaller ID. Postings without IDs fall through to their remaining fields,
// so only identical postings tie and the choice never depends on input order.
var Better = group.Chain(
	func(a, b domain.Job) int {
		switch {
		case a.Featured == b.Featured:
			return 0
		case a.Featured:
			return -1
		default:
			return 1
		}
	},
	func(a, b domain.Job) int {
		return cmp.Compare(b.SortDate(), a.SortDate())
	},
	func(a, b domain.Job) int {
		return cmp.Compare(tier.Priority(b.Tier), tier.Priority(a.Tier))
	},
	func(a, b domain.Job) int {
		return cmp.Compare(a.ID, b.ID)
	},
	func(a, b domain.Job) int {
		return cmp.Or(
			cmp.Compare(a.Title, b.Title),
			cmp.Compare(a.URL, b.URL),
			cmp.Compare(a.Location, b.Location),
			cmp.Compare(a.Tier, b.Tier),
			cmp.Compare(a.Source, b.Source),
			cmp.Compare(a.PostedDate, b.PostedDate),
			cmp.Compare(a.PublishedDate, b.PublishedDate),
		)
	},
)

// Categorize returns every canonical tier with one representative per company.
func Categorize(jobs []domain.Job) Buckets {
	return Dedupe(Partition(jobs))
}

// Dedupe collapses already partitioned buckets.
func Dedupe(p Partitioned) Buckets {
	out := make(Buckets, len(tier.All))
	for _, t := range tier.All {
		sel := group.Select(p.Raw[t], CompanyKey, Better)
		reps := make([]Representative, 0, sel.Len())
		for _, w := range sel.Winners() {
			reps = append(reps, Representative{
				Job:             w.Record,
				CompanyJobCount: w.Count,
				AllCompanyJobs:  w.Siblings,
			})
		}
		out[t] = reps
	}
	return out
}
