package generator

import (
	"context"
	"sync"
)

// --- fake models ---

type fakeText struct {
	resp  TextResponse
	err   error
	calls int
	last  TextRequest
}

func (f *fakeText) GenerateText(_ context.Context, req TextRequest) (TextResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return TextResponse{}, f.err
	}
	return f.resp, nil
}

type fakeImage struct {
	resp  ImageResponse
	err   error
	panic bool
	calls int
}

func (f *fakeImage) GenerateImage(_ context.Context, _ ImageRequest) (ImageResponse, error) {
	f.calls++
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return ImageResponse{}, f.err
	}
	return f.resp, nil
}

// fakePlanner drives Session without going through Agent.
type fakePlanner struct {
	mu          sync.Mutex
	article     Article
	planErr     error
	diagram     Diagram
	diagramOK   bool
	planCalls   int
	diagCalls   int
	beforePlan  func()
	planRelease chan struct{}
}

func (f *fakePlanner) GeneratePlan(_ context.Context, topic string) (Article, error) {
	f.mu.Lock()
	f.planCalls++
	hook, release := f.beforePlan, f.planRelease
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if release != nil {
		<-release
	}
	if f.planErr != nil {
		return Article{}, f.planErr
	}
	a := f.article
	a.Topic = topic
	return a, nil
}

func (f *fakePlanner) GenerateDiagram(_ context.Context, _ string) (Diagram, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diagCalls++
	return f.diagram, f.diagramOK
}

func (f *fakePlanner) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.planCalls, f.diagCalls
}
