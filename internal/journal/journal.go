// Package journal은 게이트웨이의 세션 갱신 시도를 기록하고 요약한다.
package journal

import "time"

type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeRejected       Outcome = "rejected"
	OutcomeTransportError Outcome = "transport_error"
	// OutcomeLoopBroken은 갱신 리다이렉트가 반복되어 갱신 없이 로그인으로 보낸 경우
	OutcomeLoopBroken Outcome = "loop_broken"
)

var Outcomes = []Outcome{
	OutcomeSuccess,
	OutcomeRejected,
	OutcomeTransportError,
	OutcomeLoopBroken,
}

// Event는 한 번의 갱신 시도. 토큰 원문은 저장하지 않고 지문만 남긴다
type Event struct {
	ID          int64         `json:"id"`
	OccurredAt  time.Time     `json:"occurredAt"`
	Path        string        `json:"path"`
	Outcome     Outcome       `json:"outcome"`
	StatusCode  int           `json:"statusCode,omitempty"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Latency     time.Duration `json:"-"`
}

type Summary struct {
	Since       time.Time       `json:"since"`
	Total       int             `json:"total"`
	ByOutcome   map[Outcome]int `json:"byOutcome"`
	LastEventAt *time.Time      `json:"lastEventAt,omitempty"`
}
