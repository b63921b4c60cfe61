//go:build ignore

// Публикует запрос на проверку наличия книги в стрим и ждёт результат воркера.
//
//	go run scripts/test_publish.go -isbn 9780143127550 -lat 49.2827 -lng -123.1207
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/library-availability/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	isbn := flag.String("isbn", "9780143127550", "ISBN to look up")
	lat := flag.Float64("lat", 49.2827, "latitude")
	lng := flag.Float64("lng", -123.1207, "longitude")
	radius := flag.Float64("max-distance", 15, "search radius, km")
	wait := flag.Duration("wait", 60*time.Second, "how long to wait for the result")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.AvailabilityRequestEvent{
		RequestID:   uuid.New(),
		ISBN:        *isbn,
		Latitude:    *lat,
		Longitude:   *lng,
		MaxDistance: *radius,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Запоминаем хвост стрима результатов до публикации, чтобы не читать старые ответы
	lastID := "$"
	if last, err := client.XRevRangeN(ctx, domain.StreamAvailabilityDone, "+", "-", 1).Result(); err == nil && len(last) > 0 {
		lastID = last[0].ID
	}

	msgID, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamAvailabilityRequest,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Request published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamAvailabilityRequest)
	fmt.Printf("   Message ID: %s\n", msgID)
	fmt.Printf("   Request ID: %s\n", event.RequestID)
	fmt.Printf("   ISBN: %s near %.4f, %.4f (%.1f km)\n", event.ISBN, event.Latitude, event.Longitude, event.MaxDistance)
	fmt.Printf("\nWaiting for result in %s...\n", domain.StreamAvailabilityDone)

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamAvailabilityDone, lastID},
			Count:   10,
			Block:   2 * time.Second,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Printf("XREAD failed: %v", err)
			}
			continue
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID

				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var done domain.AvailabilityDoneEvent
				if err := json.Unmarshal([]byte(raw), &done); err != nil || done.RequestID != event.RequestID {
					continue
				}

				pretty, _ := json.MarshalIndent(done, "", "  ")
				fmt.Printf("\nResult received:\n%s\n", pretty)
				return
			}
		}
	}

	fmt.Println("Timeout waiting for result")
}
