package query

import (
	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

// AskMonitor provides hooks to observe Ask.
// Implement this interface to trace the intermediate steps of a question.
type AskMonitor interface {
	Start(question, language string)
	AfterAnswer(answer string)
	AfterExtraction(refs ai.References)
	BeforeFind(filter storage.Filter, cached bool)
	Finish(articles []*core.Article)
}

// noopMonitor is a no-op implementation of AskMonitor
type noopMonitor struct{}

var _ AskMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                   {}
func (n *noopMonitor) AfterAnswer(_ string)                {}
func (n *noopMonitor) AfterExtraction(_ ai.References)     {}
func (n *noopMonitor) BeforeFind(_ storage.Filter, _ bool) {}
func (n *noopMonitor) Finish(_ []*core.Article)            {}
