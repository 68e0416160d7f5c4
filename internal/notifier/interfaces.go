package notifier

// INotifier delivers account security notifications (welcome, MFA enabled or
// disabled, recovery codes regenerated). Template rendering is owned by the
// implementation; callers pass the template name and its arguments.
type INotifier interface {
	NotifyFromTemplate(to string, subject string, templateName string, data any) error
}
