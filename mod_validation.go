package momoto

import (
	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/validate"
)

// ValidationModule installs a validator. A nil Config uses validate.DefaultConfig.
type ValidationModule struct {
	Config *validate.Config
}

func (m ValidationModule) Install(e *Engine) error {
	cfg := validate.DefaultConfig()
	if m.Config != nil {
		cfg = *m.Config
	}
	v, err := validate.New(cfg, e.Logger())
	if err != nil {
		return err
	}
	e.AddResources(v)
	return nil
}

// Validation checks the named preset. With corrected set the hybrid
// wrapper is checked, otherwise the bare physical model.
func (e *Engine) Validation(name string, corrected bool) (validate.Report, error) {
	v, ok := Resource[validate.Validator](e)
	if !ok {
		v, _ = validate.New(validate.DefaultConfig(), e.Logger())
	}
	mats, err := requireMaterials(e, "validation")
	if err != nil {
		return validate.Report{}, err
	}

	var b material.BSDF
	if corrected {
		b, err = mats.Hybrid(name)
	} else {
		b, err = mats.Physical(name)
	}
	if err != nil {
		return validate.Report{}, err
	}
	report := v.Validate(b)
	if !report.Passed() {
		e.Logger().Warnf("material %q failed %d validation checks", name, len(report.Failures()))
	}
	return report, nil
}
