package cli

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/Makepad-fr/tada/internal/model"
)

// doWatch prints the list now and again on every tick of the schedule
// until the context is cancelled.
func (r *runner) doWatch(args []string) int {
	var q listQuery
	var every string
	fs := r.flags("watch")
	q.bind(fs)
	fs.StringVar(&every, "every", r.opt.WatchSchedule, `cron spec or "@every 30s"`)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	status, err := model.ParseStatus(q.status)
	if err != nil {
		r.fail(err.Error())
		return 2
	}
	f, err := parseFormat(q.output)
	if err != nil {
		r.fail(err.Error())
		return 2
	}
	schedule, err := cron.ParseStandard(every)
	if err != nil {
		r.fail(fmt.Sprintf("watch: bad schedule %q: %v", every, err))
		return 2
	}

	var mu sync.Mutex
	render := func() {
		mu.Lock()
		defer mu.Unlock()
		r.show(q, status, f)
	}

	render()

	c := cron.New(cron.WithLocation(r.opt.Location), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(schedule, cron.FuncJob(render))
	c.Start()
	r.opt.Logger.Debug("watching", "schedule", every)

	<-r.ctx.Done()
	<-c.Stop().Done()
	return 0
}
