package cli

import (
	"github.com/cestmoi1337/ScorePlayer/internal/agent/api"
	"github.com/cestmoi1337/ScorePlayer/internal/agent/config"
)

// для тестов
var (
	NewAPIClient = api.NewClient
	ReadPassword = readPassword
	SaveProfile  = config.Save
)
