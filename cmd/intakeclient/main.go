package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

type slot struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func main() {
	audioFile := flag.String("audio", "testdata/encounter.wav", "Path to the encounter recording")
	serverURL := flag.String("server", "http://localhost:8080", "HTTP API base URL")
	grpcAddr := flag.String("grpc", "", "Optional gRPC address to health-check first, e.g. localhost:50051")
	doctor := flag.String("doctor", "Dr. Rao", "Doctor's name")
	location := flag.String("location", "Clinic A", "Clinic location")
	exportPath := flag.String("export", "", "Download the CSV export to this path after populating")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *grpcAddr != "" {
		checkHealth(ctx, *grpcAddr)
	}

	data, err := os.ReadFile(*audioFile)
	if err != nil {
		log.Fatalf("Failed to read audio file: %v", err)
	}
	describeWAV(data)

	var created struct {
		SessionID string `json:"sessionId"`
	}
	call(ctx, http.MethodPost, *serverURL+"/v1/sessions", "", nil, &created)
	log.Printf("Session created: %s", created.SessionID)
	base := *serverURL + "/v1/sessions/" + created.SessionID

	info, _ := json.Marshal(map[string]string{"doctorName": *doctor, "location": *location})
	var msg struct {
		Message string `json:"message"`
	}
	call(ctx, http.MethodPost, base+"/doctor", "application/json", info, &msg)
	log.Printf("Doctor info: %s", msg.Message)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", filepath.Base(*audioFile))
	if err != nil {
		log.Fatalf("Failed to build upload: %v", err)
	}
	fw.Write(data)
	mw.Close()

	start := time.Now()
	var populated struct {
		Slots []slot `json:"slots"`
	}
	call(ctx, http.MethodPost, base+"/audio", mw.FormDataContentType(), body.Bytes(), &populated)
	log.Printf("Form populated in %v", time.Since(start))
	for _, s := range populated.Slots {
		fmt.Printf("%-20s %s\n", s.Label+":", s.Value)
	}

	if *exportPath != "" {
		download(ctx, *serverURL+"/v1/assessments/export", *exportPath)
	}
}

func checkHealth(ctx context.Context, addr string) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	log.Printf("Service health: %s", resp.Status)
}

// describeWAV logs the PCM header of WAV recordings. Other formats are sent as-is.
func describeWAV(data []byte) {
	if len(data) < wavHeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		log.Printf("Audio: %d bytes (not a WAV file)", len(data))
		return
	}
	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		binary.LittleEndian.Uint16(data[20:22]),
		binary.LittleEndian.Uint16(data[22:24]),
		binary.LittleEndian.Uint32(data[24:28]),
		binary.LittleEndian.Uint16(data[34:36]))
}

func call(ctx context.Context, method, url, contentType string, body []byte, out any) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		log.Fatalf("%s %s: %s: %s", method, url, resp.Status, b)
	}
	if err := json.Unmarshal(b, out); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}
}

func download(ctx context.Context, url, path string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		log.Println("No assessments stored yet")
		return
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Export failed: %s", resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	n, err := io.Copy(f, resp.Body)
	if err != nil {
		log.Fatalf("Failed to write export: %v", err)
	}
	log.Printf("Export saved to %s (%d bytes)", path, n)
}
