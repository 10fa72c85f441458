// Package registration はユーザーの登録状態（デザイナー/顧客プロジェクト）を解決する。
package registration

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/interiorly/interiorly/internal/model"
	"github.com/interiorly/interiorly/internal/repository"
)

const (
	kindDesigner = "designer"
	kindCustomer = "customer"
)

// Recorder は問い合わせ結果をメトリクスに記録するインターフェース。
type Recorder interface {
	RecordRegistrationLookup(kind string)
	RecordRegistrationFailure(kind string)
	RecordStaleDiscard()
}

// Config はResolverの設定。
type Config struct {
	TTL           time.Duration // キャッシュの有効期間
	LookupTimeout time.Duration // 1回の解決（2つの問い合わせ合計）の上限
}

// DefaultConfig はResolverの既定設定を返す。
func DefaultConfig() Config {
	return Config{
		TTL:           time.Minute,
		LookupTimeout: 5 * time.Second,
	}
}

type entry struct {
	status     model.RegistrationStatus
	generation uint64
	expiresAt  time.Time
}

// Resolver はユーザーIDから登録状態を解決し、ユーザー単位でキャッシュする。
//
// デザイナーの問い合わせで見つかった場合は顧客プロジェクトを問い合わせない。
// 問い合わせの失敗はログに記録し「見つからない」として扱うため、呼び出し元にエラーは返らない。
// Invalidate のたびにユーザーの世代が進み、古い世代の結果はキャッシュに書き込まれない。
//
// キャッシュとは別に、現在の世代で最後に完了した解決結果を保持する。
// TTLや問い合わせの失敗に関係なく残るため、Snapshot は一度解決が終われば Loading を返さない。
type Resolver struct {
	designers repository.DesignerRepository
	customers repository.CustomerRepository
	recorder  Recorder
	config    Config
	now       func() time.Time

	mu          sync.Mutex
	entries     map[string]entry
	settled     map[string]entry // expiresAt は使用しない
	generations map[string]uint64
	pending     map[string]bool

	group singleflight.Group
	wg    sync.WaitGroup
}

// NewResolver はResolverを生成する。recorderはnilでもよい。
func NewResolver(
	designers repository.DesignerRepository,
	customers repository.CustomerRepository,
	recorder Recorder,
	config Config,
) *Resolver {
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = DefaultConfig().LookupTimeout
	}
	return &Resolver{
		designers:   designers,
		customers:   customers,
		recorder:    recorder,
		config:      config,
		now:         time.Now,
		entries:     make(map[string]entry),
		settled:     make(map[string]entry),
		generations: make(map[string]uint64),
		pending:     make(map[string]bool),
	}
}

// Resolve は登録状態を返す。userIDが空（未ログイン）の場合は問い合わせずに未登録を返す。
func (r *Resolver) Resolve(ctx context.Context, userID string) model.RegistrationStatus {
	if userID == "" {
		return model.UnregisteredStatus()
	}

	status, gen, ok := r.cached(userID)
	if ok {
		return status
	}

	// 同一世代の同時呼び出しは1回の問い合わせにまとめる
	key := userID + "#" + strconv.FormatUint(gen, 10)
	v, _, _ := r.group.Do(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.LookupTimeout)
		defer cancel()

		status, degraded := r.lookup(lookupCtx, userID)
		r.store(userID, gen, status, degraded)
		return status, nil
	})
	return v.(model.RegistrationStatus)
}

// Snapshot はブロックしない版のResolve。
// キャッシュがあればそれを返す。なければバックグラウンドで解決を開始し、
// 現在の世代で完了済みの結果があればそれを、なければLoadingを返す。
func (r *Resolver) Snapshot(userID string) model.RegistrationStatus {
	if userID == "" {
		return model.UnregisteredStatus()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if status, ok := r.lookupCacheLocked(userID); ok {
		return status
	}

	r.startBackgroundLocked(userID)

	if last, ok := r.settled[userID]; ok && last.generation == r.generations[userID] {
		return last.status
	}
	return model.LoadingStatus()
}

// startBackgroundLocked はユーザーの解決が実行中でなければバックグラウンドで開始する。
func (r *Resolver) startBackgroundLocked(userID string) {
	if !r.pending[userID] {
		r.pending[userID] = true
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.Resolve(context.Background(), userID)

			r.mu.Lock()
			delete(r.pending, userID)
			r.mu.Unlock()
		}()
	}
}

// Invalidate はユーザーのキャッシュを破棄し世代を進める。
// セッションの作成・破棄時に呼び出される。
func (r *Resolver) Invalidate(userID string) {
	if userID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.generations[userID]++
	delete(r.entries, userID)
	delete(r.settled, userID)
}

// Wait はバックグラウンドで実行中の解決がすべて終わるまで待つ。
func (r *Resolver) Wait() {
	r.wg.Wait()
}

// cached はキャッシュ済みの登録状態と現在の世代を返す。
func (r *Resolver) cached(userID string) (model.RegistrationStatus, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.lookupCacheLocked(userID)
	return status, r.generations[userID], ok
}

func (r *Resolver) lookupCacheLocked(userID string) (model.RegistrationStatus, bool) {
	e, ok := r.entries[userID]
	if !ok {
		return model.RegistrationStatus{}, false
	}
	if e.generation != r.generations[userID] || !r.now().Before(e.expiresAt) {
		delete(r.entries, userID)
		return model.RegistrationStatus{}, false
	}
	return e.status, true
}

// store は解決結果を書き込む。
// 解決中に世代が進んでいた場合は何も書き込まない。
// 完了済みの結果は常に残すが、失敗を含む結果はTTLキャッシュには入れない。
func (r *Resolver) store(userID string, gen uint64, status model.RegistrationStatus, degraded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generations[userID] {
		r.recordStale()
		slog.Debug("discarded stale registration status",
			slog.String("user_id", userID),
			slog.Uint64("generation", gen),
			slog.Uint64("current_generation", r.generations[userID]),
		)
		return
	}

	r.settled[userID] = entry{status: status, generation: gen}
	if degraded || r.config.TTL <= 0 {
		return
	}

	r.entries[userID] = entry{
		status:     status,
		generation: gen,
		expiresAt:  r.now().Add(r.config.TTL),
	}
}

// lookup はデザイナー、顧客プロジェクトの順に問い合わせる。
// degradedは問い合わせの失敗を未登録として扱った場合にtrueになる。
func (r *Resolver) lookup(ctx context.Context, userID string) (status model.RegistrationStatus, degraded bool) {
	r.recordLookup(kindDesigner)
	designerID, err := r.designers.FindIDByUserID(ctx, userID)
	if err != nil {
		degraded = true
		r.lookupFailed(kindDesigner, userID, err)
	} else if designerID != "" {
		return model.RegistrationStatus{IsDesigner: true, DesignerID: designerID}, false
	}

	r.recordLookup(kindCustomer)
	hasProject, err := r.customers.ExistsByUserID(ctx, userID)
	if err != nil {
		r.lookupFailed(kindCustomer, userID, err)
		return model.UnregisteredStatus(), true
	}

	return model.RegistrationStatus{HasCustomerProject: hasProject}, degraded
}

func (r *Resolver) lookupFailed(kind, userID string, err error) {
	slog.Warn("registration lookup failed",
		slog.String("kind", kind),
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	)
	if r.recorder != nil {
		r.recorder.RecordRegistrationFailure(kind)
	}
}

func (r *Resolver) recordLookup(kind string) {
	if r.recorder != nil {
		r.recorder.RecordRegistrationLookup(kind)
	}
}

func (r *Resolver) recordStale() {
	if r.recorder != nil {
		r.recorder.RecordStaleDiscard()
	}
}
