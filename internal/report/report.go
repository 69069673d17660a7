// Package report runs the whole pipeline for one survey: plan, dialogue
// with the generation service, parsing, layout, rendering and assembly.
package report

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thywilljoshua/survey-report/internal/ai"
	"github.com/thywilljoshua/survey-report/internal/assemble"
	"github.com/thywilljoshua/survey-report/internal/config"
	"github.com/thywilljoshua/survey-report/internal/conversation"
	"github.com/thywilljoshua/survey-report/internal/failure"
	"github.com/thywilljoshua/survey-report/internal/layout"
	"github.com/thywilljoshua/survey-report/internal/logging"
	"github.com/thywilljoshua/survey-report/internal/parse"
	"github.com/thywilljoshua/survey-report/internal/plan"
	"github.com/thywilljoshua/survey-report/internal/prompts"
	"github.com/thywilljoshua/survey-report/internal/render"
	"github.com/thywilljoshua/survey-report/internal/retry"
	"github.com/thywilljoshua/survey-report/internal/survey"
	"github.com/thywilljoshua/survey-report/internal/templates"
)

// Request is one report to produce.
type Request struct {
	RequesterID string
	User        survey.User
	Transcript  survey.Transcript
}

// Service is safe for concurrent use; every run owns its conversation and
// temporary files.
type Service struct {
	cfg     config.Config
	gen     ai.Generator
	catalog *templates.Catalog
	fonts   *render.FontSet
	log     *zap.Logger

	// Now and Sleep are replaced in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewService(cfg config.Config, gen ai.Generator, fonts *render.FontSet, log *zap.Logger) *Service {
	if gen == nil {
		gen = ai.Disabled{}
	}
	return &Service{
		cfg:     cfg,
		gen:     gen,
		catalog: templates.New(cfg.Templates.Dir),
		fonts:   fonts,
		log:     logging.OrNop(log),
		Now:     time.Now,
		Sleep:   retry.Sleep,
	}
}

// GenerateBasic produces the short report. When generation is disabled it
// uses canned text and marks the result degraded.
func (s *Service) GenerateBasic(ctx context.Context, req Request) (Result, error) {
	return s.generate(ctx, plan.Basic, req)
}

// GeneratePremium produces the full report. Any failure aborts the run and
// no file is written.
func (s *Service) GeneratePremium(ctx context.Context, req Request) (Result, error) {
	return s.generate(ctx, plan.Premium, req)
}

// Generate dispatches on v.
func (s *Service) Generate(ctx context.Context, v plan.Variant, req Request) (Result, error) {
	return s.generate(ctx, v, req)
}

type run struct {
	*Service
	id      string
	variant plan.Variant
	plan    plan.Plan
	req     Request
	log     *zap.Logger
	ws      *assemble.Workspace
	engine  *layout.Engine
	render  *render.Renderer
	stats   Stats
	pageSeq int
}

func (s *Service) generate(ctx context.Context, v plan.Variant, req Request) (res Result, err error) {
	start := s.Now()
	r := &run{Service: s, id: uuid.NewString(), variant: v, req: req}
	r.log = s.log.With(
		zap.String("run_id", r.id),
		zap.String("variant", string(v)),
		zap.String("requester", req.RequesterID))
	defer func() {
		if err != nil {
			r.log.Error("report generation failed", zap.Error(err))
		}
	}()

	if r.plan, err = plan.For(v); err != nil {
		return Result{}, failure.Wrap(failure.StagePlan, failure.KindInternal, err)
	}
	if req.Transcript.Len() == 0 && (v == plan.Premium || !ai.IsDisabled(s.gen)) {
		return Result{}, failure.Wrap(failure.StagePlan, failure.KindConfig, errors.New("empty transcript"))
	}
	if err := s.catalog.Validate(r.plan); err != nil {
		return Result{}, failure.Wrap(failure.StagePlan, failure.KindMissingTemplate, err)
	}
	if err := r.setup(); err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := r.ws.Close(); cerr != nil {
			r.log.Warn("failed to remove workspace", zap.String("dir", r.ws.Dir()), zap.Error(cerr))
		}
	}()

	r.log.Info("report generation started",
		zap.Int("answers", req.Transcript.Len()),
		zap.Float64("target_pages", r.plan.TotalPages()))

	var refs []assemble.PageRef
	degraded := false
	switch {
	case v == plan.Basic && ai.IsDisabled(s.gen):
		r.log.Warn("generation disabled, using canned basic text")
		degraded = true
		refs, err = r.basicFallback()
	case v == plan.Basic:
		refs, err = r.basic(ctx)
	default:
		refs, err = r.premium(ctx)
	}
	if err != nil {
		return Result{}, err
	}

	out, alternates := s.outputPaths(v, req.RequesterID, start, r.id)
	wr, err := assemble.New(s.catalog, r.log).Write(refs, out, alternates...)
	if err != nil {
		return Result{}, failure.Wrap(failure.StageWrite, failure.KindIO, err)
	}

	r.stats.Duration = s.Now().Sub(start)
	res = Result{
		RunID:    r.id,
		Variant:  v,
		Path:     wr.Path,
		Pages:    wr.Pages,
		Bytes:    wr.Bytes,
		Degraded: degraded,
		Stats:    r.stats,
	}
	r.log.Info("report generation finished",
		zap.String("path", res.Path),
		zap.Int("pages", res.Pages),
		zap.Int("chars", res.Stats.Chars),
		zap.Int("calls", res.Stats.Calls),
		zap.Duration("duration", res.Stats.Duration))
	return res, nil
}

func (r *run) setup() error {
	ws, err := assemble.NewWorkspace(r.cfg.Output.WorkDir, r.id)
	if err != nil {
		return failure.Wrap(failure.StagePlan, failure.KindIO, err)
	}
	m, err := render.NewMeasurer(r.fonts)
	if err != nil {
		ws.Close()
		return failure.Wrap(failure.StageLayout, failure.KindConfig, err)
	}
	styles := layout.DefaultStyles(r.fonts.Faces())
	sections, subsections := r.plan.Titles()
	r.engine, err = layout.NewEngine(m, r.cfg.Layout.Geometry, styles, sections, subsections)
	if err != nil {
		ws.Close()
		return failure.Wrap(failure.StageLayout, failure.KindConfig, err)
	}
	r.ws = ws
	r.render = render.New(r.fonts, r.cfg.Layout.Geometry, styles, r.log)
	return nil
}

// outputPaths names the artifact. The alternates carry the run id and are
// used when a concurrent or earlier run already holds the name.
func (s *Service) outputPaths(v plan.Variant, requester string, at time.Time, runID string) (string, []string) {
	p := filepath.Join(s.cfg.Output.Dir, OutputName(v, requester, at))
	stem := strings.TrimSuffix(p, ".pdf")
	return p, []string{stem + "_" + runID[:8] + ".pdf", stem + "_" + runID + ".pdf"}
}

func (r *run) orchestrator() *conversation.Orchestrator {
	buf := conversation.NewBuffer(r.cfg.Budget(), conversation.KeepPrefixDropOldestPairs{Prefix: r.cfg.Conversation.KeepPrefix})
	rp := r.cfg.RetryPolicy()
	rp.Sleep = r.Sleep
	return conversation.New(r.gen, buf, r.cfg.ConversationPolicy(r.variant), rp, r.log)
}

func (r *run) parser() *parse.Parser {
	return parse.New(r.cfg.Thresholds(r.variant), r.log)
}

// open bootstraps the conversation and submits the transcript.
func (r *run) open(ctx context.Context) (*conversation.Orchestrator, error) {
	o := r.orchestrator()
	if err := o.Bootstrap(prompts.System(r.variant)); err != nil {
		return nil, failure.Wrap(failure.StageBootstrap, failure.KindInternal, err)
	}
	if _, err := o.Submit(ctx, prompts.Transcript(r.req.User, r.req.Transcript)); err != nil {
		return nil, failure.Wrap(failure.StageSubmit, failure.KindFatalAPI, err)
	}
	return o, nil
}

func (r *run) pause(ctx context.Context, i int) error {
	if i == 0 || r.cfg.Policy.SectionPause <= 0 {
		return nil
	}
	return r.Sleep(ctx, r.cfg.Policy.SectionPause)
}

func (r *run) finishCalls(o *conversation.Orchestrator) {
	st := o.Stats()
	r.stats.Calls = st.Calls
	r.stats.Retries = st.Retries
	r.stats.TrimmedTurns = st.TrimmedTurns
	r.stats.Usage = st.Usage
}

// basic generates the flat basic section in one page request.
func (r *run) basic(ctx context.Context) ([]assemble.PageRef, error) {
	o, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.finishCalls(o)
	cpp := r.cfg.Policy.CharsPerPage
	sec := r.plan.Sections[0]
	ss := r.stats.section(sec.Key)
	ss.Title = sec.Title
	before := o.Stats().Calls

	if _, err := o.RequestSection(ctx, prompts.Section(sec, cpp)); err != nil {
		return nil, failure.Wrap(failure.StageSection, failure.KindFatalAPI, err).With("section", sec.Key)
	}
	reply, err := o.RequestPage(ctx, prompts.Pages(sec, cpp), cpp*len(sec.PageTitles))
	if err != nil {
		return nil, failure.Wrap(failure.StagePage, failure.KindFatalAPI, err).With("section", sec.Key)
	}
	p := r.parser()
	p.HeadingFor = func(i, n int) string { return pageTitle(sec, i) }
	pages, err := p.ParseSection(reply.Text, len(sec.PageTitles))
	if err != nil {
		return nil, failure.Wrap(failure.StageParse, failure.KindDegenerateResponse, err).With("section", sec.Key)
	}
	ss.Calls = o.Stats().Calls - before
	rendered, err := r.renderBasic(pages, sec.Key)
	if err != nil {
		return nil, err
	}
	return assemble.New(r.catalog, r.log).Basic(rendered)
}

func pageTitle(sec plan.Section, i int) string {
	if i < len(sec.PageTitles) {
		return sec.PageTitles[i]
	}
	return sec.Title
}

// basicFallback lays out the canned basic text.
func (r *run) basicFallback() ([]assemble.PageRef, error) {
	sec := r.plan.Sections[0]
	ss := r.stats.section(sec.Key)
	ss.Title = sec.Title
	var pages []parse.PageContent
	for _, text := range prompts.FallbackBasicPages() {
		pages = append(pages, parse.PageContent{RawText: text})
	}
	rendered, err := r.renderBasic(pages, sec.Key)
	if err != nil {
		return nil, err
	}
	return assemble.New(r.catalog, r.log).Basic(rendered)
}

func (r *run) renderBasic(pages []parse.PageContent, key string) ([]string, error) {
	var rendered []string
	for i := range pages {
		pages[i].SectionKey = key
		pages[i].Subsection = -1
		files, err := r.layoutAndRender(pages[i], func(n int) templates.Key {
			return templates.Key{Variant: plan.Basic, Role: templates.RoleContent, Block: len(rendered) + n}
		})
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, files...)
	}
	return rendered, nil
}

// premium generates every section and subsection in plan order.
func (r *run) premium(ctx context.Context) ([]assemble.PageRef, error) {
	o, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.finishCalls(o)
	cpp := r.cfg.Policy.CharsPerPage
	p := r.parser()

	var sections []assemble.SectionPages
	for i, sec := range r.plan.Sections {
		if err := r.pause(ctx, i); err != nil {
			return nil, failure.Wrap(failure.StageSection, failure.KindFatalAPI, err).With("section", sec.Key)
		}
		ss := r.stats.section(sec.Key)
		ss.Title = sec.Title
		before := o.Stats().Calls
		log := r.log.With(zap.String("section", sec.Key))
		log.Info("generating section", zap.Int("subsections", len(sec.Subsections)))

		if _, err := o.RequestSection(ctx, prompts.Section(sec, cpp)); err != nil {
			return nil, failure.Wrap(failure.StageSection, failure.KindFatalAPI, err).With("section", sec.Key)
		}
		sp := assemble.SectionPages{Key: sec.Key}
		for j, sub := range sec.Subsections {
			label := func(e *failure.Error) *failure.Error {
				return e.With("section", sec.Key).With("subsection", strconv.Itoa(j))
			}
			reply, err := o.RequestPage(ctx, prompts.Subsection(sec, j, cpp), sub.TargetChars(cpp))
			if err != nil {
				return nil, label(failure.Wrap(failure.StagePage, failure.KindFatalAPI, err))
			}
			p.HeadingFor = func(i, n int) string { return sub.Description }
			pages, err := p.ParseSection(reply.Text, sub.ExpectedPages())
			if err != nil {
				return nil, label(failure.Wrap(failure.StageParse, failure.KindDegenerateResponse, err))
			}
			var files []string
			for _, pc := range pages {
				pc.SectionKey, pc.Subsection = sec.Key, j
				f, err := r.layoutAndRender(pc, func(int) templates.Key {
					return templates.Key{Variant: plan.Premium, Section: sec.Key, Role: templates.RoleContent}
				})
				if err != nil {
					return nil, err
				}
				files = append(files, f...)
			}
			sp.Subsections = append(sp.Subsections, files)
			log.Debug("subsection done", zap.Int("subsection", j), zap.Int("pages", len(files)), zap.Int("chars", len([]rune(reply.Text))))
		}
		ss.Calls = o.Stats().Calls - before
		sections = append(sections, sp)
	}

	coverTpl, err := r.catalog.Resolve(templates.Key{Variant: plan.Premium, Role: templates.RoleCover})
	if err != nil {
		return nil, failure.Wrap(failure.StageRender, failure.KindMissingTemplate, err)
	}
	cover := r.ws.File("cover.pdf")
	if err := r.render.RenderCover(coverTpl, r.req.User.DisplayName(), r.req.User.CompletionDate(r.Now()), cover); err != nil {
		return nil, failure.Wrap(failure.StageRender, failure.KindIO, err)
	}
	refs, err := assemble.New(r.catalog, r.log).Premium(cover, sections)
	if err != nil {
		return nil, failure.Wrap(failure.StageAssemble, failure.KindMissingTemplate, err)
	}
	return refs, nil
}

// layoutAndRender lays out one page of content and renders each resulting
// physical page on the background bg(n) returns for it. It assigns global
// page indices.
func (r *run) layoutAndRender(pc parse.PageContent, bg func(n int) templates.Key) ([]string, error) {
	r.pageSeq++
	pc.GlobalIndex = r.pageSeq
	text := pc.Text()
	laid := r.engine.Layout(text)
	ss := r.stats.section(pc.SectionKey)
	ss.Chars += len([]rune(text))
	r.stats.Chars += len([]rune(text))
	if len(laid) == 0 {
		r.log.Warn("page content empty after cleanup", zap.Int("page", pc.GlobalIndex))
		return nil, nil
	}
	label := func(e *failure.Error) *failure.Error {
		e.With("section", pc.SectionKey).With("page", strconv.Itoa(pc.GlobalIndex))
		if pc.Subsection >= 0 {
			e.With("subsection", strconv.Itoa(pc.Subsection))
		}
		return e
	}
	var files []string
	for n, page := range laid {
		tpl, err := r.catalog.Resolve(bg(n))
		if err != nil {
			return nil, label(failure.Wrap(failure.StageRender, failure.KindMissingTemplate, err))
		}
		out := r.ws.File("page-%04d-%02d.pdf", pc.GlobalIndex, n)
		res, err := r.render.Render(page, tpl, out)
		if err != nil {
			return nil, label(failure.Wrap(failure.StageRender, failure.KindIO, err))
		}
		if res.Dropped > 0 {
			r.stats.DroppedLines += res.Dropped
		}
		files = append(files, out)
	}
	ss.Pages += len(files)
	r.stats.ContentPages += len(files)
	return files, nil
}
