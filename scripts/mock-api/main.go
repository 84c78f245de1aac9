// Minimal stand-in for the REST API the sample scenario targets, so a
// swarm run can complete locally without a real backend. Kept
// dependency-free on purpose.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"
)

type endpointResponse struct {
	Error                 *string `json:"error"`
	RequestingServiceName string  `json:"requesting_service_name"`
}

func main() {
	addr := flag.String("addr", ":50000", "listen address")
	delay := flag.Duration("delay", 2*time.Millisecond, "artificial processing time per request")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/some_rest_api_endpoint", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
			return
		}

		var req struct {
			RequestingServiceName string `json:"requesting_service_name"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.RequestingServiceName == "" {
			req.RequestingServiceName = "unknown"
		}

		if *delay > 0 {
			time.Sleep(*delay)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(endpointResponse{
			RequestingServiceName: req.RequestingServiceName,
		})
	})

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	log.Printf("mock API listening on %s", *addr)
	log.Printf("POST /api/v1/some_rest_api_endpoint answers {\"error\": null, ...}")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
