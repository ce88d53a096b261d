// Package cluster groups analyzed queries by shared keyword or bigram and
// rolls up their metrics and category counts.
package cluster

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mkrasilnikov/minusflow/internal/model"
)

// minClusterSize filters out single-query clusters, which carry no rollup
// value over the query list itself.
const minClusterSize = 2

// stopTokens are particles and prepositions that make useless cluster keys.
var stopTokens = map[string]struct{}{
	"в": {}, "на": {}, "и": {}, "с": {}, "по": {}, "для": {}, "не": {},
	"из": {}, "за": {}, "от": {}, "до": {}, "как": {}, "что": {}, "где": {},
}

// Build groups queries by unigram and bigram keys and returns the rollups,
// sorted descending by cost. Bigram clusters carry IsBigram so the
// presentation layer can distinguish them.
func Build(queries []model.AnalyzedQuery) []model.QueryCluster {
	type group struct {
		keyword  string
		members  []model.AnalyzedQuery
		isBigram bool
	}

	groups := make(map[string]*group)

	add := func(key string, isBigram bool, q model.AnalyzedQuery) {
		g, ok := groups[key]
		if !ok {
			g = &group{keyword: key, isBigram: isBigram}
			groups[key] = g
		}
		g.members = append(g.members, q)
	}

	for _, q := range queries {
		tokens := tokenize(q.Query)
		seen := make(map[string]struct{})
		for i, tok := range tokens {
			if _, dup := seen["u:"+tok]; !dup {
				seen["u:"+tok] = struct{}{}
				add("u:"+tok, false, q)
			}
			if i+1 < len(tokens) {
				bigram := tok + " " + tokens[i+1]
				if _, dup := seen["b:"+bigram]; !dup {
					seen["b:"+bigram] = struct{}{}
					add("b:"+bigram, true, q)
				}
			}
		}
	}

	clusters := make([]model.QueryCluster, 0, len(groups))
	for key, g := range groups {
		if len(g.members) < minClusterSize {
			continue
		}
		clusters = append(clusters, rollup(strings.TrimPrefix(strings.TrimPrefix(key, "u:"), "b:"), g.isBigram, g.members))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Cost != clusters[j].Cost {
			return clusters[i].Cost > clusters[j].Cost
		}
		return clusters[i].Keyword < clusters[j].Keyword
	})

	return clusters
}

// rollup aggregates metrics and category counts for one cluster.
func rollup(keyword string, isBigram bool, members []model.AnalyzedQuery) model.QueryCluster {
	c := model.QueryCluster{
		Keyword:  keyword,
		IsBigram: isBigram,
		Queries:  len(members),
	}

	for _, q := range members {
		c.Impressions += q.Metrics.Impressions
		c.Clicks += q.Metrics.Clicks
		c.Cost += q.Metrics.Cost
		c.Conversions += q.Metrics.Conversions

		switch q.Category {
		case model.CategoryTarget:
			c.TargetCount++
		case model.CategoryTrash:
			c.TrashCount++
		case model.CategoryReview:
			c.ReviewCount++
		}
	}

	if c.Impressions > 0 {
		c.CTR = float64(c.Clicks) / float64(c.Impressions)
	}
	if c.Clicks > 0 {
		c.AvgCpc = c.Cost / float64(c.Clicks)
	}
	if c.Conversions > 0 {
		cpl := c.Cost / float64(c.Conversions)
		c.Cpl = &cpl
	}

	return c
}

func tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f == "" {
			continue
		}
		if _, stop := stopTokens[f]; stop {
			continue
		}
		if len([]rune(f)) < 2 {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
