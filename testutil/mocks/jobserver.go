// JobServer 是异步生成后端的测试模拟服务器。
//
// 每个作业按预设的状态序列推进: 每次状态查询前进一步，
// 到达末尾后停留在最后一个状态。支持故障注入与请求记录。
package mocks

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Failure 是一次注入的错误响应
type Failure struct {
	Status int
	Body   string
	Header http.Header
}

// RecordedRequest 记录收到的单个请求
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type scriptedJob struct {
	contentType string
	statuses    []string
	step        int
	errMessage  string
}

func (j *scriptedJob) current() string {
	if j.step >= len(j.statuses) {
		return j.statuses[len(j.statuses)-1]
	}
	return j.statuses[j.step]
}

// JobServer 模拟 /v1/generations 与 /v1/jobs 端点
type JobServer struct {
	mu sync.Mutex

	server   *httptest.Server
	jobs     map[string]*scriptedJob
	script   []string
	nextID   int
	failures []Failure
	requests []RecordedRequest
}

// NewJobServer 启动模拟服务器，测试结束时自动关闭。
// 新作业默认序列为 pending -> processing -> completed。
func NewJobServer(t testing.TB) *JobServer {
	s := &JobServer{
		jobs:   make(map[string]*scriptedJob),
		script: []string{"pending", "processing", "completed"},
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

// URL 返回服务器地址
func (s *JobServer) URL() string { return s.server.URL }

// WithStatuses 设置新提交作业的状态序列，第一个值为提交响应的状态
func (s *JobServer) WithStatuses(statuses ...string) *JobServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append([]string(nil), statuses...)
	return s
}

// AddJob 直接登记一个作业
func (s *JobServer) AddJob(id, contentType string, statuses ...string) *JobServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = &scriptedJob{contentType: contentType, statuses: statuses, errMessage: "generation failed"}
	return s
}

// FailNext 让接下来的请求依次返回注入的错误响应
func (s *JobServer) FailNext(failures ...Failure) *JobServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failures...)
	return s
}

// Requests 返回已记录的请求
func (s *JobServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Count 统计 method 与路径前缀匹配的请求数
func (s *JobServer) Count(method, pathPrefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func (s *JobServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})

	if len(s.failures) > 0 {
		f := s.failures[0]
		s.failures = s.failures[1:]
		for k, vs := range f.Header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(f.Status)
		_, _ = io.WriteString(w, f.Body)
		return
	}

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && path == "/v1/generations/images":
		s.submit(w, "image")
	case r.Method == http.MethodPost && path == "/v1/generations/videos":
		s.submit(w, "video")
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/v1/jobs/") && strings.HasSuffix(path, "/cancel"):
		s.cancel(w, strings.TrimSuffix(strings.TrimPrefix(path, "/v1/jobs/"), "/cancel"))
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v1/jobs/"):
		s.status(w, strings.TrimPrefix(path, "/v1/jobs/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"message": "no route"}})
	}
}

func (s *JobServer) submit(w http.ResponseWriter, contentType string) {
	s.nextID++
	id := fmt.Sprintf("job-%d", s.nextID)
	job := &scriptedJob{contentType: contentType, statuses: append([]string(nil), s.script...), errMessage: "generation failed"}
	s.jobs[id] = job
	writeJSON(w, http.StatusAccepted, envelope(id, job))
}

func (s *JobServer) status(w http.ResponseWriter, id string) {
	job, ok := s.jobs[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"message": "job not found"}})
		return
	}
	job.step++
	writeJSON(w, http.StatusOK, envelope(id, job))
}

func (s *JobServer) cancel(w http.ResponseWriter, id string) {
	job, ok := s.jobs[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"message": "job not found"}})
		return
	}
	switch job.current() {
	case "completed", "failed", "cancelled":
		out := envelope(id, job)
		out["message"] = "job already " + job.current()
		writeJSON(w, http.StatusOK, out)
	default:
		job.statuses = []string{"cancelled"}
		job.step = 0
		writeJSON(w, http.StatusOK, envelope(id, job))
	}
}

func envelope(id string, job *scriptedJob) map[string]any {
	status := job.current()
	out := map[string]any{
		"job_id":       id,
		"status":       status,
		"content_type": job.contentType,
		"created_at":   "2026-01-01T00:00:00Z",
		"updated_at":   "2026-01-01T00:00:00Z",
	}
	switch status {
	case "completed":
		if job.contentType == "video" {
			out["video"] = map[string]any{"url": "https://cdn.example.com/" + id + ".mp4", "duration": 15, "aspect_ratio": "16:9"}
		} else {
			out["images"] = []map[string]any{{"url": "https://cdn.example.com/" + id + ".png", "width": 1024, "height": 1024, "format": "png"}}
		}
	case "failed":
		out["error"] = map[string]any{"message": job.errMessage}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
