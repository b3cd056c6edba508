package model

import "sort"

// SentinelRank marks a contract without an external popularity rank.
const SentinelRank = -1

type RankedContract struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

// SortByRank orders ascending by rank. The sentinel is a plain -1 and so
// sorts before every real rank; equal ranks fall back to id order.
func SortByRank(cs []RankedContract) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Rank != cs[j].Rank {
			return cs[i].Rank < cs[j].Rank
		}
		return cs[i].ID < cs[j].ID
	})
}

func RankedIDs(cs []RankedContract) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
