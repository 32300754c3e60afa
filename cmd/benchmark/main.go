package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rupamthxt/symptomrank/internal/classifier"
	"github.com/rupamthxt/symptomrank/internal/predict"
	"github.com/rupamthxt/symptomrank/internal/symptom"
)

const (
	NumClasses  = 41
	NumQueries  = 200_000
	Workers     = 8
	MaxSymptoms = 6
)

func main() {
	fmt.Println("Starting symptomrank in-process benchmark (encode -> classify -> rank)")

	vocab := symptom.DefaultVocabulary()
	fmt.Printf("Config: Symptoms=%d | Classes=%d | Queries=%d | Workers=%d\n", vocab.Len(), NumClasses, NumQueries, Workers)

	model, err := randomModel(vocab.Len(), NumClasses)
	if err != nil {
		panic(err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := predict.New(vocab, logger)
	if err := svc.Load(model, "benchmark"); err != nil {
		panic(err)
	}

	symptoms := vocab.Symptoms()
	queries := make([][]string, 1024)
	for i := range queries {
		n := 1 + rand.Intn(MaxSymptoms)
		q := make([]string, n)
		for j := range q {
			q[j] = symptoms[rand.Intn(len(symptoms))]
		}
		queries[i] = q
	}

	start := time.Now()
	var wg sync.WaitGroup
	perWorker := NumQueries / Workers
	for w := 0; w < Workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			ctx := context.Background()
			for i := 0; i < perWorker; i++ {
				if _, err := svc.Predict(ctx, queries[(offset+i)%len(queries)]); err != nil {
					fmt.Printf("predict error: %v\n", err)
				}
			}
		}(w * perWorker)
	}
	wg.Wait()

	elapsed := time.Since(start)
	fmt.Printf("Duration: %s\n", elapsed)
	fmt.Printf("QPS: %.2f\n", float64(NumQueries)/elapsed.Seconds())
}

// randomModel builds a naive Bayes model with normalized random parameters.
func randomModel(features, classes int) (*classifier.NaiveBayes, error) {
	names := make([]string, classes)
	prior := make([]float64, classes)
	probs := make([][]float64, classes)

	for c := 0; c < classes; c++ {
		names[c] = fmt.Sprintf("disease_%02d", c)
		prior[c] = math.Log(1 / float64(classes))

		row := make([]float64, features)
		var sum float64
		for i := range row {
			row[i] = rand.Float64() + 1e-3
			sum += row[i]
		}
		for i := range row {
			row[i] = math.Log(row[i] / sum)
		}
		probs[c] = row
	}
	return classifier.NewNaiveBayes(names, prior, probs)
}
