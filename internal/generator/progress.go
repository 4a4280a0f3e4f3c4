package generator

// Вехи прогресса
const (
	ProgressAnalyze  = 5
	ProgressPrompt   = 20
	ProgressLLM      = 35
	ProgressValidate = 70
	ProgressSelfHeal = 82
	ProgressPersist  = 90
)

// progressReporter пропускает всё, что не строго больше предыдущего значения
type progressReporter struct {
	fn   ProgressFunc
	last int
}

func (p *progressReporter) report(percent int, message string) {
	if p.fn == nil || percent <= p.last {
		return
	}
	p.last = percent
	p.fn(percent, message)
}
