package main

import (
	"flag"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// LoadTestConfig holds configuration for load testing the gateway
type LoadTestConfig struct {
	URL             string
	ConcurrentUsers int
	RequestsPerUser int
	Timeout         time.Duration
	ThinkTime       time.Duration
}

// LoadTestResult holds the result of a single request
type LoadTestResult struct {
	StatusCode int
	Duration   time.Duration
	Success    bool
	Error      error
}

// LoadTestSummary holds the summary of load test results
type LoadTestSummary struct {
	TotalRequests       int
	SuccessfulRequests  int
	FailedRequests      int
	TotalDuration       time.Duration
	AverageResponseTime time.Duration
	MinResponseTime     time.Duration
	MaxResponseTime     time.Duration
	RequestsPerSecond   float64
	ErrorRate           float64
	ResponseTime95th    time.Duration
	ResponseTime99th    time.Duration
}

func main() {
	var config LoadTestConfig

	flag.StringVar(&config.URL, "url", "http://localhost:8081/api/v1/convert?from=EUR&to=USD&amount=100", "Target URL to test")
	flag.IntVar(&config.ConcurrentUsers, "users", 10, "Number of concurrent users")
	flag.IntVar(&config.RequestsPerUser, "requests", 100, "Number of requests per user")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "Request timeout")
	flag.DurationVar(&config.ThinkTime, "think", 100*time.Millisecond, "Think time between requests")
	flag.Parse()

	fmt.Printf("Starting load test...\n")
	fmt.Printf("URL: %s\n", config.URL)
	fmt.Printf("Concurrent Users: %d\n", config.ConcurrentUsers)
	fmt.Printf("Requests per User: %d\n", config.RequestsPerUser)
	fmt.Println()

	summary := runLoadTest(config)
	printSummary(summary)
}

func runLoadTest(config LoadTestConfig) LoadTestSummary {
	results := make(chan LoadTestResult, config.ConcurrentUsers*config.RequestsPerUser)
	client := &http.Client{Timeout: config.Timeout}

	startTime := time.Now()

	var waitGroup sync.WaitGroup
	for user := 0; user < config.ConcurrentUsers; user++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for request := 0; request < config.RequestsPerUser; request++ {
				requestStart := time.Now()
				response, err := client.Get(config.URL)
				result := LoadTestResult{
					Duration: time.Since(requestStart),
					Error:    err,
				}
				if err == nil {
					result.StatusCode = response.StatusCode
					result.Success = response.StatusCode == http.StatusOK
					response.Body.Close()
				}
				results <- result

				time.Sleep(config.ThinkTime)
			}
		}()
	}

	waitGroup.Wait()
	close(results)

	return summarize(results, time.Since(startTime))
}

func summarize(results chan LoadTestResult, totalDuration time.Duration) LoadTestSummary {
	summary := LoadTestSummary{
		TotalDuration:   totalDuration,
		MinResponseTime: time.Hour,
	}

	var durations []time.Duration
	var totalResponseTime time.Duration

	for result := range results {
		summary.TotalRequests++
		if result.Success {
			summary.SuccessfulRequests++
		} else {
			summary.FailedRequests++
		}

		durations = append(durations, result.Duration)
		totalResponseTime += result.Duration
		if result.Duration < summary.MinResponseTime {
			summary.MinResponseTime = result.Duration
		}
		if result.Duration > summary.MaxResponseTime {
			summary.MaxResponseTime = result.Duration
		}
	}

	if summary.TotalRequests > 0 {
		summary.AverageResponseTime = totalResponseTime / time.Duration(summary.TotalRequests)
		summary.RequestsPerSecond = float64(summary.TotalRequests) / totalDuration.Seconds()
		summary.ErrorRate = float64(summary.FailedRequests) / float64(summary.TotalRequests) * 100
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	if len(durations) > 0 {
		summary.ResponseTime95th = durations[len(durations)*95/100]
		summary.ResponseTime99th = durations[len(durations)*99/100]
	}

	return summary
}

func printSummary(summary LoadTestSummary) {
	fmt.Println("Load test complete")
	fmt.Printf("Total Requests:      %d\n", summary.TotalRequests)
	fmt.Printf("Successful:          %d\n", summary.SuccessfulRequests)
	fmt.Printf("Failed:              %d\n", summary.FailedRequests)
	fmt.Printf("Error Rate:          %.2f%%\n", summary.ErrorRate)
	fmt.Printf("Total Duration:      %v\n", summary.TotalDuration)
	fmt.Printf("Requests/sec:        %.2f\n", summary.RequestsPerSecond)
	fmt.Printf("Avg Response Time:   %v\n", summary.AverageResponseTime)
	fmt.Printf("Min Response Time:   %v\n", summary.MinResponseTime)
	fmt.Printf("Max Response Time:   %v\n", summary.MaxResponseTime)
	fmt.Printf("95th Percentile:     %v\n", summary.ResponseTime95th)
	fmt.Printf("99th Percentile:     %v\n", summary.ResponseTime99th)
}
