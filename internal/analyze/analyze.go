// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze derives a reading profile from a user's shelf: likely
// genres, likely favorite authors, and the catalog queries worth running for
// the rule-based recommendation path. It also answers series-identity
// questions (does the shelf already hold this series, is there a volume one
// in this pool) on top of the base-title heuristics in internal/rank.
package analyze

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/bookshelf-engine/internal/rank"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// ContentTypeManga is the only content type the engine classifies today;
// every shelf reads as manga.
const ContentTypeManga = "manga"

// genreEntry maps a display genre to the title keywords that vote for it.
// Entries are ordered and matching stops at the first keyword per genre, so
// profiles are reproducible. Keywords are lowercase; matching runs on
// normalized titles.
type genreEntry struct {
	genre    string
	keywords []string
}

var genreTable = []genreEntry{
	{"スポーツ", []string{"ハイキュー", "スラムダンク", "slam dunk", "テニス", "サッカー", "バスケ", "野球", "メダリスト", "アオのハコ", "バレー"}},
	{"バトル", []string{"ヒーロー", "hero", "アカデミア", "呪術", "廻戦", "進撃", "巨人", "ワンパン", "マン", "dragon ball", "ドラゴンボール"}},
	{"冒険", []string{"piece", "ピース", "トリコ", "冒険", "ファンタジー", "魔法", "異世界"}},
	{"恋愛", []string{"恋", "恋愛", "ロマンス", "着せ替え", "人形", "花", "咲く"}},
	{"ホラー", []string{"鬼", "悪魔", "デーモン", "ホラー", "恐怖"}},
	{"SF", []string{"サイボーグ", "ロボット", "sf", "未来", "宇宙"}},
	{"学園", []string{"学園", "学校", "高校", "スクール", "青春"}},
}

// knownWork maps a famous series title to its author so owned series vote
// for their authors. Ordered; the first matching work per shelf entry wins.
type knownWork struct {
	work   string
	author string
}

var knownWorks = []knownWork{
	{"ワンピース", "尾田栄一郎"},
	{"one piece", "尾田栄一郎"},
	{"ナルト", "岸本斉史"},
	{"naruto", "岸本斉史"},
	{"ドラゴンボール", "鳥山明"},
	{"スラムダンク", "井上雄彦"},
	{"slam dunk", "井上雄彦"},
	{"ハイキュー", "古舘春一"},
	{"進撃の巨人", "諫山創"},
	{"呪術廻戦", "芥見下々"},
	{"僕のヒーローアカデミア", "堀越耕平"},
	{"ヒーローアカデミア", "堀越耕平"},
	{"トリコ", "島袋光年"},
	{"ワンパンマン", "ONE"},
	{"鋼の錬金術師", "荒川弘"},
}

// LibraryProfile summarizes what a shelf says about its owner.
type LibraryProfile struct {
	// Genres holds up to three inferred genres, strongest first.
	Genres []string `json:"genres" yaml:"genres"`

	// Authors holds inferred favorite authors, strongest first.
	Authors []string `json:"authors" yaml:"authors"`
}

const maxProfileGenres = 3

// Profile infers genres and authors from shelf titles. Votes are weighted by
// the owner's rating of each book, so a five-star series pulls its genre
// harder than an unrated one. Ties break alphabetically to keep profiles
// stable between runs.
func Profile(books []types.Book) LibraryProfile {
	genreVotes := make(map[string]float64)
	authorVotes := make(map[string]float64)

	for _, b := range books {
		title := rank.Normalize(b.Title)
		if title == "" {
			continue
		}
		weight := b.RatingWeight()

		for _, e := range genreTable {
			for _, kw := range e.keywords {
				if strings.Contains(title, kw) {
					genreVotes[e.genre] += weight
					break
				}
			}
		}
		for _, kw := range knownWorks {
			if strings.Contains(title, strings.ToLower(kw.work)) {
				authorVotes[kw.author] += weight
				break
			}
		}
	}

	return LibraryProfile{
		Genres:  topVoted(genreVotes, maxProfileGenres),
		Authors: topVoted(authorVotes, 0),
	}
}

// topVoted orders names by vote weight descending, alphabetical on ties,
// truncated to n when n is positive.
func topVoted(votes map[string]float64, n int) []string {
	names := make([]string, 0, len(votes))
	for name := range votes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if votes[names[i]] != votes[names[j]] {
			return votes[names[i]] > votes[names[j]]
		}
		return names[i] < names[j]
	})
	if n > 0 && len(names) > n {
		names = names[:n]
	}
	return names
}

// QueryKind labels the strategy that produced a generated query.
type QueryKind string

const (
	QueryUserKeywords QueryKind = "user_keywords"
	QueryMainGenre    QueryKind = "main_genre"
	QuerySecondGenre  QueryKind = "second_genre"
	QueryAuthor       QueryKind = "similar_author"
	QueryFallback     QueryKind = "fallback"
)

// Query is one generated catalog query.
type Query struct {
	Text string    `json:"text" yaml:"text"`
	Kind QueryKind `json:"kind" yaml:"kind"`
}

// SmartQueries turns a profile and optional user keywords into catalog
// queries for the rule-based recommender. User keywords always lead. The
// balance knob blends in automatic analysis: above 0.1 genre queries join,
// above 0.3 an author query joins too. With nothing to go on, a generic
// popularity query keeps the pipeline moving.
func SmartQueries(profile LibraryProfile, keywords []string, contentType string, balance float64) []Query {
	var queries []Query

	if len(keywords) > 0 {
		text := strings.Join(keywords, " ")
		if contentType == ContentTypeManga {
			text += " 漫画"
		}
		queries = append(queries, Query{Text: text, Kind: QueryUserKeywords})
	}

	if balance > 0.1 && len(profile.Genres) > 0 {
		queries = append(queries, Query{
			Text: fmt.Sprintf("%s 漫画 おすすめ", profile.Genres[0]),
			Kind: QueryMainGenre,
		})
		if len(profile.Genres) > 1 {
			queries = append(queries, Query{
				Text: fmt.Sprintf("%s 漫画 新刊", profile.Genres[1]),
				Kind: QuerySecondGenre,
			})
		}
	}

	if balance > 0.3 && len(profile.Authors) > 0 {
		queries = append(queries, Query{
			Text: fmt.Sprintf("%s 他作品", profile.Authors[0]),
			Kind: QueryAuthor,
		})
	}

	if len(queries) == 0 {
		text := "人気 本"
		if contentType == ContentTypeManga {
			text = "人気 漫画"
		}
		queries = append(queries, Query{Text: text, Kind: QueryFallback})
	}
	return queries
}

// defaultDiscoveryQueries seed the TF-IDF path when the user supplies no
// keywords. Broad on purpose: the recommender needs a wide candidate pool
// to compare against the shelf.
var defaultDiscoveryQueries = []string{
	"人気 漫画 おすすめ",
	"話題 コミック 新刊",
	"評価 高い マンガ",
}

// DiscoveryQueries returns the catalog queries feeding the TF-IDF path: a
// single keyword soup when the user supplied keywords, the default
// discovery set otherwise.
func DiscoveryQueries(keywords []string) []string {
	if len(keywords) == 0 {
		return append([]string(nil), defaultDiscoveryQueries...)
	}
	return []string{strings.Join(keywords, " ") + " 漫画 おすすめ"}
}

// SeriesOwned reports whether a candidate title belongs to a series already
// on the shelf. Series bases are compared so volume numbering does not hide
// a match; bases shorter than two runes match everything and are ignored.
func SeriesOwned(title string, books []types.Book) bool {
	base := rank.BaseTitle(title)
	if utf8.RuneCountInString(base) < 2 {
		return false
	}
	for _, b := range books {
		owned := rank.BaseTitle(b.Title)
		if utf8.RuneCountInString(owned) < 2 {
			continue
		}
		if base == owned {
			return true
		}
		if utf8.RuneCountInString(base) > 3 && strings.Contains(owned, base) {
			return true
		}
		if utf8.RuneCountInString(owned) > 3 && strings.Contains(base, owned) {
			return true
		}
	}
	return false
}

// FilterOwned drops candidates the shelf already covers and collapses
// multiple volumes of one series to the first seen, preserving candidate
// order. Candidates without a usable title are dropped too.
func FilterOwned(candidates []types.Candidate, books []types.Book) []types.Candidate {
	ownedTitles := make(map[string]bool, len(books))
	for _, b := range books {
		ownedTitles[rank.Normalize(b.Title)] = true
	}

	seenBases := make(map[string]bool)
	kept := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Title == "" {
			continue
		}
		base := rank.BaseTitle(c.Title)
		if utf8.RuneCountInString(base) < 2 {
			continue
		}
		if ownedTitles[rank.Normalize(c.Title)] || seenBases[base] || SeriesOwned(c.Title, books) {
			continue
		}
		kept = append(kept, c)
		seenBases[base] = true
	}
	return kept
}

// PreferFirstVolumes swaps mid-series recommendations for the series' first
// volume when the pool holds one. Entries stay unique; a swap that would
// duplicate an earlier recommendation keeps the original instead.
func PreferFirstVolumes(pool, recs []types.Candidate) []types.Candidate {
	used := make(map[string]bool, len(recs))
	out := make([]types.Candidate, 0, len(recs))
	for _, c := range recs {
		alt := VolumeOneAlternative(pool, c)
		if alt.ExternalID != c.ExternalID && used[alt.ExternalID] {
			alt = c
		}
		if used[alt.ExternalID] {
			continue
		}
		out = append(out, alt)
		used[alt.ExternalID] = true
	}
	return out
}

// VolumeOneAlternative returns the first volume of target's series when the
// pool holds one, otherwise target unchanged. Used to swap a mid-series hit
// for the natural starting point.
func VolumeOneAlternative(pool []types.Candidate, target types.Candidate) types.Candidate {
	base := rank.BaseTitle(target.Title)
	if utf8.RuneCountInString(base) <= 2 {
		return target
	}
	for _, c := range pool {
		if !rank.DetectsFirstVolume(c.Title) {
			continue
		}
		cb := rank.BaseTitle(c.Title)
		if utf8.RuneCountInString(cb) <= 2 {
			continue
		}
		if strings.Contains(cb, base) || strings.Contains(base, cb) {
			return c
		}
	}
	return target
}
