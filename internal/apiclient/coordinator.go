package apiclient

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
	"taeu.kr/fitedge/internal/refresh"
)

const refreshFlightKey = "refresh"

// Refresher는 세션 갱신을 수행한다
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*refresh.Result, error)
}

// refreshCoordinator는 프로세스 안에서 동시에 하나의 갱신만 진행되게 한다.
// 진행 중인 갱신이 있으면 합류하고, 끝나면 핸들이 비워져 다음 만료 때 새로 시작된다
type refreshCoordinator struct {
	group     singleflight.Group
	refresher Refresher
	timeout   time.Duration
}

func newRefreshCoordinator(refresher Refresher, timeout time.Duration) *refreshCoordinator {
	return &refreshCoordinator{
		refresher: refresher,
		timeout:   timeout,
	}
}

// startOrJoin은 갱신을 시작하거나 진행 중인 갱신의 결과를 기다린다.
// 갱신 자체는 호출자의 취소와 분리되어 합류한 모든 호출자가 같은 결과를 받는다
func (rc *refreshCoordinator) startOrJoin(ctx context.Context) error {
	ch := rc.group.DoChan(refreshFlightKey, func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rc.timeout)
		defer cancel()

		return rc.refresher.Refresh(refreshCtx, "")
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
