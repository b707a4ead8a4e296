package splatnet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anarchyOverview = `{
  "data": {
    "bankaraBattleHistories": {
      "summary": {"win": 3},
      "historyGroups": {
        "nodes": [
          {
            "bankaraMatchChallenge": {
              "state": "SUCCEEDED", "winCount": 2, "loseCount": 1,
              "maxWinCount": 3, "maxLoseCount": 3, "isPromo": false,
              "isUdemaeUp": false, "udemaeAfter": "A+1", "earnedUdemaePoint": 40
            },
            "historyDetails": {"nodes": [
              {"id": "a", "judgement": "WIN", "udemae": "A+"},
              {"id": "b", "judgement": "LOSE", "udemae": "A+"}
            ]}
          },
          {
            "bankaraMatchChallenge": null,
            "historyDetails": {"nodes": [
              {"id": "c", "judgement": "WIN", "udemae": "S", "bankaraMatch": {"earnedUdemaePoint": 8}}
            ]}
          }
        ]
      }
    }
  }
}`

func TestParseOverview(t *testing.T) {
	ov, err := ParseOverview([]byte(anarchyOverview))
	require.NoError(t, err)
	assert.Equal(t, HistoryAnarchy, ov.Kind)
	require.Len(t, ov.Groups, 2)

	series := ov.Groups[0]
	require.NotNil(t, series.BankaraMatchChallenge)
	assert.Equal(t, 2, series.BankaraMatchChallenge.WinCount)
	assert.Equal(t, "A+1", *series.BankaraMatchChallenge.UdemaeAfter)
	assert.Len(t, series.HistoryDetails.Nodes, 2)

	open := ov.Groups[1]
	assert.Nil(t, open.BankaraMatchChallenge)
	require.NotNil(t, open.HistoryDetails.Nodes[0].BankaraMatch)
	assert.Equal(t, 8, *open.HistoryDetails.Nodes[0].BankaraMatch.EarnedUdemaePoint)
}

func TestParseOverviewUnwrapped(t *testing.T) {
	ov, err := ParseOverview([]byte(`{"xBattleHistories": {"historyGroups": {"nodes": [
		{"xMatchMeasurement": {"state": "INPROGRESS", "winCount": 1, "loseCount": 0}, "historyDetails": {"nodes": []}}
	]}}}`))
	require.NoError(t, err)
	assert.Equal(t, HistoryX, ov.Kind)
	require.Len(t, ov.Groups, 1)
	require.NotNil(t, ov.Groups[0].XMatchMeasurement)
	assert.Nil(t, ov.Groups[0].XMatchMeasurement.XPowerAfter)
}

func TestParseOverviewErrors(t *testing.T) {
	tests := map[string]string{
		"invalid json":   `{"data":`,
		"no histories":   `{"data": {"viewer": {}}}`,
		"unknown kind":   `{"coopBattleHistories": {}}`,
		"not an object":  `[1, 2]`,
		"bad group type": `{"bankaraBattleHistories": {"historyGroups": {"nodes": [{"historyDetails": 5}]}}}`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOverview([]byte(payload))
			assert.Error(t, err)
		})
	}
}

func TestParseDetailRoots(t *testing.T) {
	body := `{"id": "abc", "judgement": "WIN", "duration": 180, "bankaraMatch": {"mode": "OPEN", "bankaraPower": {"power": 1834.5}}}`
	payloads := []string{
		`{"data": {"vsHistoryDetail": ` + body + `}}`,
		`{"vsHistoryDetail": ` + body + `}`,
		body,
	}

	for _, p := range payloads {
		d, err := ParseDetail([]byte(p))
		require.NoError(t, err)
		assert.Equal(t, "abc", d.ID)
		assert.Equal(t, 180, d.Duration)
		require.NotNil(t, d.BankaraMatch)
		require.NotNil(t, d.BankaraMatch.BankaraPower)
		assert.Equal(t, 1834.5, d.BankaraMatch.BankaraPower.Power)
	}

	_, err := ParseDetail([]byte(`{"data": {"vsHistoryDetail": null}}`))
	assert.Error(t, err)
}

func TestBankaraPowerForms(t *testing.T) {
	var m BankaraMatch
	require.NoError(t, json.Unmarshal([]byte(`{"bankaraPower": 1700.25}`), &m))
	assert.Equal(t, 1700.25, m.BankaraPower.Power)

	m = BankaraMatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"bankaraPower": null}`), &m))
	assert.Nil(t, m.BankaraPower)

	assert.Error(t, json.Unmarshal([]byte(`{"bankaraPower": "high"}`), &m))

	raw, err := json.Marshal(BankaraPower{Power: 12.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"power": 12.5}`, string(raw))
}

func TestDetailTeamsOrder(t *testing.T) {
	d := Detail{
		MyTeam:     Team{Order: 2},
		OtherTeams: []Team{{Order: 1}, {Order: 3}},
	}
	teams := d.Teams()
	require.Len(t, teams, 3)
	assert.Equal(t, []int{2, 1, 3}, []int{teams[0].Order, teams[1].Order, teams[2].Order})
}
