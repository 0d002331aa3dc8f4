package fixtures

import "fmt"

// JobEnvelope 返回异步后端的作业响应 JSON
func JobEnvelope(id, status string) string {
	return fmt.Sprintf(`{"job_id":%q,"status":%q,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:05Z"}`, id, status)
}

// CompletedImageEnvelope 返回已完成的图像作业响应
func CompletedImageEnvelope(id string) string {
	return fmt.Sprintf(`{
  "job_id": %q,
  "status": "completed",
  "content_type": "image",
  "images": [
    {"url": "https://cdn.example.com/out/%s-0.png", "width": 1080, "height": 1080, "format": "png", "output_format": "instagram_square"}
  ],
  "metadata": {"prompt": "hero shot", "style_preset": "bold", "model_version": "imagegen-3"},
  "created_at": "2026-01-01T00:00:00Z",
  "updated_at": "2026-01-01T00:00:30Z"
}`, id, id)
}

// CompletedVideoEnvelope 返回已完成的视频作业响应
func CompletedVideoEnvelope(id string) string {
	return fmt.Sprintf(`{
  "job_id": %q,
  "status": "completed",
  "content_type": "video",
  "video": {"url": "https://cdn.example.com/out/%s.mp4", "duration": 15, "aspect_ratio": "9:16", "thumbnail_url": "https://cdn.example.com/out/%s.jpg"},
  "metadata": {"model_version": "videogen-2"},
  "created_at": "2026-01-01T00:00:00Z",
  "updated_at": "2026-01-01T00:04:00Z"
}`, id, id, id)
}

// FailedEnvelope 返回失败的作业响应
func FailedEnvelope(id, message string) string {
	return fmt.Sprintf(`{"job_id":%q,"status":"failed","error":{"message":%q}}`, id, message)
}

// GeminiImageResponse 返回带一张内联图片的 Gemini 响应
func GeminiImageResponse(b64 string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":%q}}]},"finishReason":"STOP"}],"modelVersion":"gemini-2.5-flash-image"}`, b64)
}
