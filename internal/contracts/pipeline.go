package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 스냅샷, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5
//   Data  Universe  Signals  Timeline  Backtest  Report

// Stage represents a pipeline stage
type Stage string

const (
	// StageData S0: 일봉 로딩 및 품질 검증
	// 위치: internal/s0_data/
	StageData Stage = "S0_DATA"

	// StageUniverse S1: 종목 목록 및 제외 사유
	// 위치: internal/s1_universe/
	StageUniverse Stage = "S1_UNIVERSE"

	// StageSignals S2: 지표/시그널 계산 (종목별 병렬)
	// 위치: internal/s2_signals/
	StageSignals Stage = "S2_SIGNALS"

	// StageTimeline S3: 횡단면 타임라인 (barrier)
	// 위치: internal/timeline/
	StageTimeline Stage = "S3_TIMELINE"

	// StageBacktest S4: 이벤트 기반 포트폴리오 시뮬레이션
	// 위치: internal/backtest/
	StageBacktest Stage = "S4_BACKTEST"

	// StageReport S5: 일일 스크리닝 리포트, CSV, 결과 저장
	// 위치: internal/report/, internal/audit/
	StageReport Stage = "S5_REPORT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	if len(s) < 2 {
		return "UNKNOWN"
	}
	for _, stage := range AllStages() {
		if stage == s {
			return string(s[:2])
		}
	}
	return "UNKNOWN"
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageData,
		StageUniverse,
		StageSignals,
		StageTimeline,
		StageBacktest,
		StageReport,
	}
}
