package ranking

import (
	"math"
	"strings"

	"github.com/spigell/job-finder/internal/jobs"
)

// ScoreAll returns the TF-IDF cosine similarity between the criteria and every posting,
// in posting order. The vector space is fit over the query and all postings together.
func ScoreAll(postings []jobs.Posting, c jobs.Criteria) []float64 {
	if len(postings) == 0 {
		return []float64{}
	}

	corpus := make([][]string, 0, len(postings)+1)
	corpus = append(corpus, tokenize(QueryDocument(c)))
	for _, p := range postings {
		corpus = append(corpus, tokenize(PostingDocument(p)))
	}

	vectors := vectorize(corpus)
	query := vectors[0]

	scores := make([]float64, len(postings))
	for i := range postings {
		scores[i] = jobs.Clamp(dot(query, vectors[i+1]))
	}
	return scores
}

// ScoreWithVectors annotates postings with their similarity, keeps those meeting the
// threshold and orders them by descending score.
func ScoreWithVectors(postings []jobs.Posting, c jobs.Criteria, threshold float64) []jobs.Posting {
	similarities := ScoreAll(postings, c)
	scored := make([]jobs.Posting, 0, len(postings))
	for i, p := range postings {
		p = p.WithScore(similarities[i])
		if p.Score() >= threshold {
			scored = append(scored, p)
		}
	}
	SortByScore(scored)
	return scored
}

// tokenize keeps words of two or more letters that are not English stop words.
func tokenize(document string) []string {
	words := strings.Fields(document)
	tokens := words[:0]
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// vectorize builds L2 normalised TF-IDF vectors with smoothed idf.
func vectorize(corpus [][]string) []map[string]float64 {
	df := make(map[string]int)
	counts := make([]map[string]int, len(corpus))
	for i, tokens := range corpus {
		counts[i] = make(map[string]int, len(tokens))
		for _, t := range tokens {
			counts[i][t]++
		}
		for t := range counts[i] {
			df[t]++
		}
	}

	n := float64(len(corpus))
	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]map[string]float64, len(corpus))
	for i, tf := range counts {
		vec := make(map[string]float64, len(tf))
		var norm float64
		for t, count := range tf {
			w := float64(count) * idf[t]
			vec[t] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for t := range vec {
				vec[t] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for t, w := range a {
		sum += w * b[t]
	}
	return sum
}
