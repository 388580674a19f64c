package memory_test

import (
	"testing"

	"github.com/dukex/agroops/pkg/persistence/memory"
	"github.com/dukex/agroops/pkg/persistence/persistencetest"
	"github.com/dukex/agroops/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence(t *testing.T) {
	persistencetest.Run(t, memory.NewPersistence())
}

func TestRepository_SaveStoresCopy(t *testing.T) {
	p := memory.NewPersistence()
	repo := p.TemplateRepository()

	template := testutil.CreateTestTemplate(testutil.WithTemplateID("tpl-1"))
	require.NoError(t, repo.Save(t.Context(), template))

	template.Fields = nil

	stored, err := repo.GetByID(t.Context(), "tpl-1")
	require.NoError(t, err)
	assert.Len(t, stored.Fields, 2)
}
