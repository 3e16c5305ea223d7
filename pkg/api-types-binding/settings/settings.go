package settings

import (
	"errors"

	apisettings "github.com/opst/taskboard/pkg/api/types/settings"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/notify"
)

func Compose(s kdb.Settings) apisettings.Settings {
	return apisettings.Settings{
		ApiUrl:            s.ApiUrl,
		ApiKey:            s.ApiKey,
		InstanceName:      s.InstanceName,
		NotificationPhone: s.NotificationPhone,
	}
}

func Bind(s apisettings.Settings) kdb.Settings {
	return kdb.Settings{
		ApiUrl:            s.ApiUrl,
		ApiKey:            s.ApiKey,
		InstanceName:      s.InstanceName,
		NotificationPhone: s.NotificationPhone,
	}
}

// ComposeResult of an overdue check for responses.
func ComposeResult(r notify.Result) apisettings.NotifyResult {
	res := apisettings.NotifyResult{Success: r.Success, Count: r.Count}
	switch {
	case r.Err == nil:
	case errors.Is(r.Err, notify.ErrSettingsMissing):
		res.Error = "Settings missing"
	default:
		res.Error = r.Err.Error()
	}
	return res
}

// ComposeTest composes the result of SendTest for responses.
func ComposeTest(err error) apisettings.TestResult {
	switch {
	case err == nil:
		return apisettings.TestResult{Success: true}
	case errors.Is(err, notify.ErrSettingsMissing):
		return apisettings.TestResult{Error: "Configurações incompletas."}
	default:
		return apisettings.TestResult{Error: "Falha ao enviar mensagem (Verifique logs)."}
	}
}
