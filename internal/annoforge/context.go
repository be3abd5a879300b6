package annoforge

import (
	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/notify"
	"github.com/annoforge/annoforge/internal/data/stores"
	"github.com/annoforge/annoforge/internal/plugins"
	"github.com/annoforge/annoforge/internal/tasks"
)

// Context is the runtime handed to plugins. It narrows the application
// root to the operations plugins are allowed to perform.
type Context struct {
	app *App
}

var _ plugins.Runtime = (*Context)(nil)

// Runtime returns the plugin-facing view of the application.
func (a *App) Runtime() *Context {
	return &Context{app: a}
}

func (c *Context) CheckedItemIDs() []string {
	return c.app.State.CheckedIDs()
}

func (c *Context) ActiveItemID() string {
	return c.app.State.ActiveID()
}

func (c *Context) AllItemIDs() []string {
	files := c.app.State.Files()
	ids := make([]string, 0, len(files))
	for _, it := range files {
		ids = append(ids, it.ID)
	}
	return ids
}

func (c *Context) ItemsByID(ids []string) []item.Item {
	return c.app.Library.ByIDs(ids)
}

// RunJob queues an iterating task. The queue is not started; the user
// launches it from the queue controls.
func (c *Context) RunJob(name string, items []item.Item, each tasks.EachFunc) {
	c.app.Queue.Add(tasks.NewTask(name, items, each))
	c.Notify(notify.LevelInfo, "Task Queued", name)
}

// RunJobOnce queues a non-iterating task.
func (c *Context) RunJobOnce(name string, once tasks.OnceFunc) {
	c.app.Queue.Add(tasks.NewOnceTask(name, once))
	c.Notify(notify.LevelInfo, "Task Queued", name)
}

func (c *Context) UpdateStatus(message string) {
	c.app.bus.PublishStatusChanged(eventbus.StatusChangedPayload{Message: message})
}

func (c *Context) UpdateProgress(percent float64) {
	c.app.bus.PublishProgressChanged(eventbus.ProgressChangedPayload{Percent: percent})
}

func (c *Context) Notify(level notify.Level, title, message string) {
	c.app.bus.PublishNotificationPublished(eventbus.NotificationPublishedPayload{
		Level:   level,
		Title:   title,
		Message: message,
	})
}

func (c *Context) SaveCaption(id, caption string) error {
	return c.app.SaveCaption(id, caption)
}

func (c *Context) InvalidateImages(ids []string) {
	for _, it := range c.app.Library.ByIDs(ids) {
		c.app.Images.Invalidate(it.Path)
	}
}

func (c *Context) RefreshItems(ids []string) {
	for _, id := range ids {
		c.app.bus.PublishRefreshThumbnail(eventbus.RefreshThumbnailPayload{ItemID: id})
	}
}

func (c *Context) Annotations() *stores.AnnotationStore {
	return c.app.Annotations
}

// RunOnUI marshals fn onto the foreground loop.
func (c *Context) RunOnUI(fn func()) {
	c.app.mu.Lock()
	marshal := c.app.runOnUI
	c.app.mu.Unlock()
	marshal(fn)
}
